package competition

import (
	"database/sql"
	"time"

	"github.com/nanhai/arena/errors"
)

// SubmissionStore handles persistence of submission attempts
type SubmissionStore struct {
	db *sql.DB
}

// NewSubmissionStore creates a new submission store
func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

const submissionColumns = `id, user_id, branch, passed, completion_time, submit_time`

func scanSubmission(row interface{ Scan(...interface{}) error }) (*Submission, error) {
	var sub Submission
	var passed, completionTime sql.NullInt64
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Branch,
		&passed,
		&completionTime,
		&sub.SubmitTime,
	)
	if err != nil {
		return nil, err
	}
	if passed.Valid {
		p := int(passed.Int64)
		sub.Passed = &p
	}
	if completionTime.Valid {
		c := int(completionTime.Int64)
		sub.CompletionTime = &c
	}
	return &sub, nil
}

// Create inserts a new submission. Passed and completionTime may be nil
// when the result is still being resolved by the build pipeline.
func (s *SubmissionStore) Create(userID int64, branch string, passed, completionTime *int) (*Submission, error) {
	result, err := s.db.Exec(`
		INSERT INTO submissions (user_id, branch, passed, completion_time, submit_time)
		VALUES (?, ?, ?, ?, ?)`,
		userID, branch, nullableInt(passed), nullableInt(completionTime), time.Now(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create submission")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get submission id")
	}

	return s.GetByID(id)
}

// GetByID retrieves a submission by id
func (s *SubmissionStore) GetByID(id int64) (*Submission, error) {
	sub, err := scanSubmission(s.db.QueryRow(
		`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("submission %d not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get submission %d", id)
	}
	return sub, nil
}

// UpdateResult records the pipeline's outcome for a submission. This is
// the single write the build pipeline makes per run. A nil completionTime
// leaves the stored value unchanged.
func (s *SubmissionStore) UpdateResult(id int64, passed int, completionTime *int, submitTime time.Time) error {
	result, err := s.db.Exec(`
		UPDATE submissions
		SET passed = ?, completion_time = COALESCE(?, completion_time), submit_time = ?
		WHERE id = ?`,
		passed, nullableInt(completionTime), submitTime, id,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to update result for submission %d", id)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return errors.NewNotFoundError("submission %d not found", id)
	}
	return nil
}

// ListByUser returns a user's submissions
func (s *SubmissionStore) ListByUser(userID int64) ([]*Submission, error) {
	return s.list(`SELECT `+submissionColumns+` FROM submissions WHERE user_id = ? ORDER BY id`, userID)
}

// ListAll returns all submissions, most recent first
func (s *SubmissionStore) ListAll() ([]*Submission, error) {
	return s.list(`SELECT ` + submissionColumns + ` FROM submissions ORDER BY submit_time DESC`)
}

// ListByBranch returns submissions for a branch
func (s *SubmissionStore) ListByBranch(branch string) ([]*Submission, error) {
	return s.list(`SELECT `+submissionColumns+` FROM submissions WHERE branch = ? ORDER BY id`, branch)
}

// ListByMinPassed returns submissions with at least minPassed passing cases
func (s *SubmissionStore) ListByMinPassed(minPassed int) ([]*Submission, error) {
	return s.list(`SELECT `+submissionColumns+` FROM submissions WHERE passed >= ? ORDER BY id`, minPassed)
}

// ListByMaxCompletionTime returns submissions finished within maxSeconds
func (s *SubmissionStore) ListByMaxCompletionTime(maxSeconds int) ([]*Submission, error) {
	return s.list(`SELECT `+submissionColumns+` FROM submissions WHERE completion_time <= ? ORDER BY id`, maxSeconds)
}

// ListRecent returns the most recent submissions, capped at limit
func (s *SubmissionStore) ListRecent(limit int) ([]*Submission, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.list(`SELECT `+submissionColumns+` FROM submissions ORDER BY submit_time DESC LIMIT ?`, limit)
}

func (s *SubmissionStore) list(query string, args ...interface{}) ([]*Submission, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list submissions")
	}
	defer rows.Close()

	var subs []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan submission")
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// AverageCompletionTime returns the mean completion time in seconds
// across submissions that have one, or nil when none do.
func (s *SubmissionStore) AverageCompletionTime() (*float64, error) {
	return s.avg(`SELECT AVG(completion_time) FROM submissions WHERE completion_time IS NOT NULL`)
}

// AveragePassed returns the mean passed count across resolved submissions
func (s *SubmissionStore) AveragePassed() (*float64, error) {
	return s.avg(`SELECT AVG(passed) FROM submissions WHERE passed IS NOT NULL`)
}

func (s *SubmissionStore) avg(query string, args ...interface{}) (*float64, error) {
	var v sql.NullFloat64
	if err := s.db.QueryRow(query, args...).Scan(&v); err != nil {
		return nil, errors.Wrap(err, "failed to compute average")
	}
	if !v.Valid {
		return nil, nil
	}
	return &v.Float64, nil
}

// MaxPassedSum sums each active user's best passed count
func (s *SubmissionStore) MaxPassedSum() (int, error) {
	return s.sum(`
		SELECT COALESCE(SUM(max_passed), 0) FROM (
			SELECT MAX(s.passed) AS max_passed
			FROM submissions s
			INNER JOIN users u ON s.user_id = u.id
			WHERE s.passed IS NOT NULL
			GROUP BY s.user_id
		)`)
}

// MaxPassedSumByGroup sums best passed counts for one group's members
func (s *SubmissionStore) MaxPassedSumByGroup(groupType string) (int, error) {
	return s.sum(`
		SELECT COALESCE(SUM(max_passed), 0) FROM (
			SELECT MAX(s.passed) AS max_passed
			FROM submissions s
			INNER JOIN users u ON s.user_id = u.id
			WHERE u.group_type = ? AND s.passed IS NOT NULL
			GROUP BY s.user_id
		)`, groupType)
}

// MaxPassedSumBySubGroup sums best passed counts for one sub-group's members
func (s *SubmissionStore) MaxPassedSumBySubGroup(subGroup string) (int, error) {
	return s.sum(`
		SELECT COALESCE(SUM(max_passed), 0) FROM (
			SELECT MAX(s.passed) AS max_passed
			FROM submissions s
			INNER JOIN users u ON s.user_id = u.id
			WHERE u.sub_group = ? AND s.passed IS NOT NULL
			GROUP BY s.user_id
		)`, subGroup)
}

func (s *SubmissionStore) sum(query string, args ...interface{}) (int, error) {
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to sum best passed counts")
	}
	return n, nil
}

// FullPassAverageTimeByGroup averages completion time over a group's
// full-pass submissions. Nil when the group has none.
func (s *SubmissionStore) FullPassAverageTimeByGroup(groupType string, totalCases int) (*float64, error) {
	return s.avg(`
		SELECT AVG(s.completion_time) FROM submissions s
		INNER JOIN users u ON s.user_id = u.id
		WHERE u.group_type = ? AND s.passed = ?`, groupType, totalCases)
}

// FullPassAverageTimeBySubGroup averages completion time over a
// sub-group's full-pass submissions
func (s *SubmissionStore) FullPassAverageTimeBySubGroup(subGroup string, totalCases int) (*float64, error) {
	return s.avg(`
		SELECT AVG(s.completion_time) FROM submissions s
		INNER JOIN users u ON s.user_id = u.id
		WHERE u.sub_group = ? AND s.passed = ?`, subGroup, totalCases)
}

// FullPassUserCountBySubGroup counts distinct sub-group members with a
// full-pass submission
func (s *SubmissionStore) FullPassUserCountBySubGroup(subGroup string, totalCases int) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(DISTINCT s.user_id) FROM submissions s
		INNER JOIN users u ON s.user_id = u.id
		WHERE u.sub_group = ? AND s.passed = ?`, subGroup, totalCases).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count full-pass users")
	}
	return n, nil
}

// ListFullPassOrderedBySubmitTime returns full-pass submissions in the
// order they came in. The top-3 board is the first three entries.
func (s *SubmissionStore) ListFullPassOrderedBySubmitTime(totalCases, limit int) ([]*Submission, error) {
	return s.list(`
		SELECT `+submissionColumns+` FROM submissions
		WHERE passed = ?
		ORDER BY submit_time ASC
		LIMIT ?`, totalCases, limit)
}

// FullPassEntry is one per-user full-pass row: best time and earliest
// full-pass submit moment.
type FullPassEntry struct {
	UserID        int64
	MinTime       *int
	MinSubmitTime *time.Time
}

// FullPassUsersByGroup returns each group member who reached a full
// pass, with their best time, ordered fastest first.
func (s *SubmissionStore) FullPassUsersByGroup(groupType string, totalCases int) ([]FullPassEntry, error) {
	rows, err := s.db.Query(`
		SELECT s.user_id, MIN(s.completion_time), MIN(s.submit_time)
		FROM submissions s
		INNER JOIN users u ON s.user_id = u.id
		WHERE u.group_type = ? AND s.passed = ?
		GROUP BY s.user_id
		ORDER BY MIN(s.completion_time) ASC`, groupType, totalCases)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query full-pass users")
	}
	defer rows.Close()

	var entries []FullPassEntry
	for rows.Next() {
		var entry FullPassEntry
		var minTime sql.NullInt64
		// MIN(submit_time) is an expression column, so the driver hands
		// back the raw stored string instead of a parsed time.Time.
		var minSubmit sql.NullString
		if err := rows.Scan(&entry.UserID, &minTime, &minSubmit); err != nil {
			return nil, errors.Wrap(err, "failed to scan full-pass row")
		}
		if minTime.Valid {
			v := int(minTime.Int64)
			entry.MinTime = &v
		}
		if minSubmit.Valid {
			t, err := parseStoredTime(minSubmit.String)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse full-pass submit time")
			}
			entry.MinSubmitTime = &t
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// storedTimeLayouts mirrors the formats the sqlite driver writes and
// accepts for datetime columns
var storedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseStoredTime(raw string) (time.Time, error) {
	for _, layout := range storedTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("unrecognized timestamp %q", raw)
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
