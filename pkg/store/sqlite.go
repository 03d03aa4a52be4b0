// Package store is the durable event log: advice events and finished
// session summaries, kept in SQLite and queried by the statistics surface.
package store

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database handle.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database at path and runs the
// schema migration. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	// WAL gives concurrent readers while the session manager writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logrus.Infof("event store initialized at %s", path)
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS advice_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       TEXT    NOT NULL,
			session_id    TEXT    NOT NULL,
			ts            INTEGER NOT NULL,
			type          TEXT    NOT NULL,
			priority      TEXT    NOT NULL,
			title         TEXT    NOT NULL,
			needs_workout INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_advice_events_user_ts
			ON advice_events(user_id, ts)`,
		`CREATE TABLE IF NOT EXISTS session_summaries (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id              TEXT    NOT NULL,
			session_id           TEXT    NOT NULL UNIQUE,
			started_at           INTEGER NOT NULL,
			ended_at             INTEGER NOT NULL,
			total_work_seconds   INTEGER NOT NULL,
			good_posture_seconds INTEGER NOT NULL,
			slouching_seconds    INTEGER NOT NULL,
			too_close_seconds    INTEGER NOT NULL,
			yawn_count           INTEGER NOT NULL,
			closed_eyes_count    INTEGER NOT NULL,
			advice_count         INTEGER NOT NULL,
			posture_score        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_session_summaries_user
			ON session_summaries(user_id, started_at)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
