// Package eventlog appends detection and range transitions to a local
// sqlite store for later inspection. The log is append-only; insert
// failures are reported to the caller but are never fatal to the scan loop.
package eventlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	event TEXT NOT NULL,
	angle INTEGER NOT NULL,
	distance_cm REAL NOT NULL,
	threshold_cm REAL NOT NULL,
	recorded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS events_recorded_at ON events (recorded_at);
`

// Row is one logged event.
type Row struct {
	RunID      string
	Event      string
	Angle      int
	Distance   float64
	Threshold  float64
	RecordedAt time.Time
}

// Store is an append-only event log backed by sqlite.
type Store struct {
	db    *sql.DB
	runID string
}

// Open opens (creating if needed) the store at path. All rows recorded
// through this Store carry runID.
func Open(path, runID string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init event log schema: %w", err)
	}
	return &Store{db: db, runID: runID}, nil
}

// Record appends one event.
func (s *Store) Record(event string, angle int, distance, threshold float64, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO events (run_id, event, angle, distance_cm, threshold_cm, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.runID, event, angle, distance, threshold, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Recent returns up to n rows, newest first.
func (s *Store) Recent(n int) ([]Row, error) {
	rows, err := s.db.Query(
		`SELECT run_id, event, angle, distance_cm, threshold_cm, recorded_at
		 FROM events ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.RunID, &r.Event, &r.Angle, &r.Distance, &r.Threshold, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
