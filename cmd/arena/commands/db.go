package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nanhai/arena/competition"
	"github.com/nanhai/arena/config"
	"github.com/nanhai/arena/db"
	"github.com/nanhai/arena/errors"
	"github.com/nanhai/arena/logger"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the arena database",
	Long: `db — Manage arena database operations

Examples:
  arena db migrate            # Apply pending migrations
  arena db stats              # Show database statistics`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long:  "Display participant, submission and competition counts for the configured database",
	RunE:  runDbStats,
}

var dbPathFlag string

func init() {
	DbCmd.PersistentFlags().StringVar(&dbPathFlag, "db-path", "", "Database path (overrides config)")
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func openConfiguredDatabase() (*sql.DB, string, error) {
	path := dbPathFlag
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to load configuration")
		}
		path = cfg.Database.Path
	}

	database, err := db.OpenWithMigrations(path, logger.Logger)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open database")
	}
	return database, path, nil
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	database, path, err := openConfiguredDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Printf("Database %s is up to date\n", path)
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	database, path, err := openConfiguredDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	users := competition.NewUserStore(database)
	comps := competition.NewCompetitionStore(database)

	activeUsers, err := users.CountActive()
	if err != nil {
		return err
	}
	aiUsers, err := users.CountByGroup(competition.GroupAI)
	if err != nil {
		return err
	}
	nonAIUsers, err := users.CountByGroup(competition.GroupNonAI)
	if err != nil {
		return err
	}

	var totalSubmissions, resolvedSubmissions int
	if err := database.QueryRow(
		`SELECT COUNT(*), COUNT(passed) FROM submissions`,
	).Scan(&totalSubmissions, &resolvedSubmissions); err != nil {
		return errors.Wrap(err, "failed to count submissions")
	}

	totalCases, err := comps.TotalCases()
	if err != nil {
		return err
	}

	fmt.Printf("Database Statistics\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database Path:        %s\n", path)
	fmt.Printf("Active Participants:  %d (AI: %d, non-AI: %d)\n", activeUsers, aiUsers, nonAIUsers)
	fmt.Printf("Submissions:          %d (%d resolved)\n", totalSubmissions, resolvedSubmissions)
	fmt.Printf("Total Cases:          %d\n", totalCases)

	return nil
}
