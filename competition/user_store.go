package competition

import (
	"database/sql"
	"time"

	"github.com/nanhai/arena/errors"
)

// UserStore handles persistence of competition participants
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new user store
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, user_name, employ_id, user_eng_name, group_type, sub_group, is_deleted, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*User, error) {
	var u User
	var engName, groupType, subGroup sql.NullString
	err := row.Scan(
		&u.ID,
		&u.UserName,
		&u.EmployID,
		&engName,
		&groupType,
		&subGroup,
		&u.IsDeleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.UserEngName = engName.String
	u.GroupType = groupType.String
	u.SubGroup = subGroup.String
	return &u, nil
}

// Create inserts a new user and returns it with its assigned id
func (s *UserStore) Create(user *User) (*User, error) {
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO users (user_name, employ_id, user_eng_name, group_type, sub_group, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'N', ?, ?)`,
		user.UserName,
		user.EmployID,
		nullIfEmpty(user.UserEngName),
		nullIfEmpty(user.GroupType),
		nullIfEmpty(user.SubGroup),
		now,
		now,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user id")
	}

	return s.GetByID(id)
}

// GetByID retrieves a user by id, deleted or not
func (s *UserStore) GetByID(id int64) (*User, error) {
	user, err := scanUser(s.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("user %d not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get user %d", id)
	}
	return user, nil
}

// GetByEmployID retrieves an active user by employ id. Soft-deleted
// rows are invisible here; the build pipeline relies on that.
func (s *UserStore) GetByEmployID(employID string) (*User, error) {
	user, err := scanUser(s.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE employ_id = ? AND is_deleted = 'N'`, employID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("user with employ id %q not found", employID)
		}
		return nil, errors.Wrapf(err, "failed to get user by employ id %q", employID)
	}
	return user, nil
}

// ListActive returns all users that have not been soft-deleted
func (s *UserStore) ListActive() ([]*User, error) {
	return s.list(`SELECT ` + userColumns + ` FROM users WHERE is_deleted = 'N' ORDER BY id`)
}

// ListAll returns every user including soft-deleted ones
func (s *UserStore) ListAll() ([]*User, error) {
	return s.list(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
}

func (s *UserStore) list(query string, args ...interface{}) ([]*User, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update modifies a user's mutable fields
func (s *UserStore) Update(user *User) (*User, error) {
	result, err := s.db.Exec(`
		UPDATE users
		SET user_name = ?, user_eng_name = ?, group_type = ?, sub_group = ?, updated_at = ?
		WHERE id = ?`,
		user.UserName,
		nullIfEmpty(user.UserEngName),
		nullIfEmpty(user.GroupType),
		nullIfEmpty(user.SubGroup),
		time.Now(),
		user.ID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update user %d", user.ID)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return nil, errors.NewNotFoundError("user %d not found", user.ID)
	}

	return s.GetByID(user.ID)
}

// SoftDelete marks a user as deleted without removing the row
func (s *UserStore) SoftDelete(id int64) error {
	return s.setDeleted(id, Deleted)
}

// Restore clears a user's deleted flag
func (s *UserStore) Restore(id int64) error {
	return s.setDeleted(id, NotDeleted)
}

func (s *UserStore) setDeleted(id int64, flag string) error {
	result, err := s.db.Exec(
		`UPDATE users SET is_deleted = ?, updated_at = ? WHERE id = ?`,
		flag, time.Now(), id,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to update delete flag for user %d", id)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return errors.NewNotFoundError("user %d not found", id)
	}
	return nil
}

// CountActive counts users that have not been soft-deleted
func (s *UserStore) CountActive() (int, error) {
	return s.count(`SELECT COUNT(*) FROM users WHERE is_deleted = 'N'`)
}

// CountByGroup counts active users in a group
func (s *UserStore) CountByGroup(groupType string) (int, error) {
	return s.count(`SELECT COUNT(*) FROM users WHERE group_type = ? AND is_deleted = 'N'`, groupType)
}

// CountBySubGroup counts active users in a sub-group
func (s *UserStore) CountBySubGroup(subGroup string) (int, error) {
	return s.count(`SELECT COUNT(*) FROM users WHERE sub_group = ? AND is_deleted = 'N'`, subGroup)
}

func (s *UserStore) count(query string, args ...interface{}) (int, error) {
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}
	return n, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
