// Package ledger persists which calendar days already carry a
// reservation, so successive runs never submit the same day twice.
// Days are keyed by their index since 1970-01-01.
package ledger

import (
	"context"
	"time"

	"github.com/example/roombooker/internal/db"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS reserved_days (
	day_index INTEGER PRIMARY KEY,
	booked_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type Entry struct {
	DayIndex int
	BookedAt time.Time
}

// Date converts the entry's day index back to a calendar date (UTC).
func (e Entry) Date() time.Time {
	return time.Unix(int64(e.DayIndex)*86400, 0).UTC()
}

type Store struct{ db *db.DB }

func New(d *db.DB) *Store { return &Store{db: d} }

func (s *Store) Migrate(ctx context.Context) error {
	return s.db.Exec(ctx, schemaSQL)
}

func (s *Store) HasBooked(ctx context.Context, dayIndex int) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reserved_days WHERE day_index=$1)`, dayIndex).Scan(&exists)
	return exists, err
}

func (s *Store) RecordBooked(ctx context.Context, dayIndex int) error {
	return s.db.Exec(ctx,
		`INSERT INTO reserved_days(day_index) VALUES ($1) ON CONFLICT (day_index) DO NOTHING`, dayIndex)
}

// BookedDays lists recorded days, newest first. Used by the status page.
func (s *Store) BookedDays(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT day_index, booked_at FROM reserved_days ORDER BY day_index DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.DayIndex, &e.BookedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
