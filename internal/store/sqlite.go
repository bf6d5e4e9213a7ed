// ABOUTME: SQLite-backed relay journal using modernc.org/sqlite
// ABOUTME: Handles database setup, WAL mode, and automatic schema creation

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteJournal stores relay events in SQLite
type SQLiteJournal struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteJournal opens (or creates) the journal at path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed. ":memory:" opens a private
// in-memory database.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	logger := slog.Default().With("component", "journal")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		// Enable WAL mode for better concurrent performance
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	j := &SQLiteJournal{
		db:     db,
		logger: logger,
	}

	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite journal initialized", "path", path)
	return j, nil
}

// createSchema creates the journal table if it doesn't exist
func (j *SQLiteJournal) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS relay_events (
			event_id  TEXT PRIMARY KEY,
			conn_id   TEXT NOT NULL,
			action    TEXT NOT NULL,
			identity  TEXT NOT NULL DEFAULT '',
			detail    TEXT NOT NULL DEFAULT '',
			ts        TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_relay_events_ts ON relay_events(ts);
		CREATE INDEX IF NOT EXISTS idx_relay_events_identity ON relay_events(identity, ts);
		CREATE INDEX IF NOT EXISTS idx_relay_events_action ON relay_events(action, ts);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Close closes the database connection
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
