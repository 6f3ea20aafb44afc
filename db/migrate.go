package db

import (
	"database/sql"
	"embed"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nanhai/arena/errors"
)

//go:embed sqlite/migrations/*.sql
var migrationFS embed.FS

const migrationDir = "sqlite/migrations"

// Migrate brings the schema up to date by applying any embedded
// migration that is not yet recorded in schema_migrations. A nil logger
// applies them silently.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	files, err := pendingOrder()
	if err != nil {
		return err
	}

	applied := 0
	for _, filename := range files {
		version := strings.SplitN(filename, "_", 2)[0]

		done, err := alreadyApplied(db, version)
		if err != nil {
			// No schema_migrations table yet; only the bootstrap
			// migration may run against a bare database.
			if version != "000" {
				return errors.Newf("schema_migrations table missing before %s", filename)
			}
		} else if done {
			if logger != nil {
				logger.Debugw("Migration already applied", "migration", filename)
			}
			continue
		}

		if err := applyMigration(db, filename, version, logger); err != nil {
			return err
		}
		applied++
	}

	if logger != nil {
		logger.Infow("Schema up to date",
			"applied", applied,
			"total_migrations", len(files),
		)
	}
	return nil
}

// pendingOrder lists the embedded migration files in lexical order, so
// the 000 bootstrap file that creates schema_migrations always runs
// first.
func pendingOrder() ([]string, error) {
	entries, err := migrationFS.ReadDir(migrationDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

func alreadyApplied(db *sql.DB, version string) (bool, error) {
	var exists bool
	err := db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version,
	).Scan(&exists)
	return exists, err
}

// applyMigration runs one migration file and records its version in the
// same transaction. The 000 file creates schema_migrations and then
// records itself.
func applyMigration(db *sql.DB, filename, version string, logger *zap.SugaredLogger) error {
	script, err := migrationFS.ReadFile(filepath.Join(migrationDir, filename))
	if err != nil {
		return errors.Wrapf(err, "read %s", filename)
	}

	if logger != nil {
		logger.Infow("Applying migration", "migration", filename)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", filename)
	}

	if _, err := tx.Exec(string(script)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", filename)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", filename)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", filename)
}
