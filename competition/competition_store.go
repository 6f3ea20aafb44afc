package competition

import (
	"database/sql"
	"time"

	"github.com/nanhai/arena/errors"
)

// CompetitionStore handles the single current competition row
type CompetitionStore struct {
	db *sql.DB
}

// NewCompetitionStore creates a new competition store
func NewCompetitionStore(db *sql.DB) *CompetitionStore {
	return &CompetitionStore{db: db}
}

func scanCompetition(row interface{ Scan(...interface{}) error }) (*Competition, error) {
	var c Competition
	var startTime sql.NullTime
	if err := row.Scan(&c.ID, &startTime, &c.TotalCases); err != nil {
		return nil, err
	}
	if startTime.Valid {
		t := startTime.Time
		c.StartTime = &t
	}
	return &c, nil
}

// Current returns the first competition row, creating one with the
// default case count if none exists yet.
func (s *CompetitionStore) Current() (*Competition, error) {
	comp, err := scanCompetition(s.db.QueryRow(
		`SELECT id, start_time, total_cases FROM competitions ORDER BY id LIMIT 1`))
	if err == nil {
		return comp, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "failed to get current competition")
	}

	result, err := s.db.Exec(
		`INSERT INTO competitions (start_time, total_cases) VALUES (?, ?)`,
		time.Now(), DefaultTotalCases,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create competition")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get competition id")
	}
	return s.GetByID(id)
}

// GetByID retrieves a competition by id
func (s *CompetitionStore) GetByID(id int64) (*Competition, error) {
	comp, err := scanCompetition(s.db.QueryRow(
		`SELECT id, start_time, total_cases FROM competitions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("competition %d not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get competition %d", id)
	}
	return comp, nil
}

// Start stamps the current competition's start time with now
func (s *CompetitionStore) Start() (*Competition, error) {
	comp, err := s.Current()
	if err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(
		`UPDATE competitions SET start_time = ? WHERE id = ?`,
		time.Now(), comp.ID,
	); err != nil {
		return nil, errors.Wrap(err, "failed to start competition")
	}

	return s.GetByID(comp.ID)
}

// TotalCases returns the current competition's case count, falling back
// to the default when the row carries none.
func (s *CompetitionStore) TotalCases() (int, error) {
	comp, err := s.Current()
	if err != nil {
		return 0, err
	}
	if comp.TotalCases <= 0 {
		return DefaultTotalCases, nil
	}
	return comp.TotalCases, nil
}
