// Package runstore journals discovery runs to sqlite. It is an audit
// log for the operator: the crawler writes one row per venue per run
// and nothing in the discovery path ever reads them back.
package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Run struct {
	Id         string
	Venue      string
	State      string
	BookingUrl string
	SlotCount  int
	DurationMs int64
	StartedAt  time.Time
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO discovery_runs (id, venue, state, booking_url, slot_count, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Id,
		run.Venue,
		run.State,
		run.BookingUrl,
		run.SlotCount,
		run.DurationMs,
		run.StartedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s Store) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, venue, state, booking_url, slot_count, duration_ms, started_at
		FROM discovery_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var startedAt int64
		err := rows.Scan(
			&run.Id,
			&run.Venue,
			&run.State,
			&run.BookingUrl,
			&run.SlotCount,
			&run.DurationMs,
			&startedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		run.StartedAt = time.Unix(startedAt, 0)
		out = append(out, run)
	}
	return out, rows.Err()
}
