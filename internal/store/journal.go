// ABOUTME: Relay journal entries and the append/list operations over them
// ABOUTME: Entries are immutable once written and listed newest first

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// tsLayout keeps timestamps fixed-width so text ordering matches time ordering.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one journaled relay event.
type Entry struct {
	ID        string    // UUID v4
	ConnID    string    // connection the event happened on
	Action    string    // what the relay did
	Identity  string    // agent identity involved, if any
	Detail    string    // free-form context
	Timestamp time.Time // when it happened
}

// Filter specifies filtering options for listing journal entries.
type Filter struct {
	Action   string // exact action, empty for all
	Identity string // exact identity, empty for all
	Since    *time.Time
	Limit    int // max results (default 100, max 1000)
}

// Append writes e to the journal. Generates ID and Timestamp if not set.
func (j *SQLiteJournal) Append(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Action == "" {
		return fmt.Errorf("journal entry requires an action")
	}

	query := `
		INSERT INTO relay_events (event_id, conn_id, action, identity, detail, ts)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := j.db.ExecContext(ctx, query,
		e.ID,
		e.ConnID,
		e.Action,
		e.Identity,
		e.Detail,
		e.Timestamp.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}

	j.logger.Debug("appended journal entry",
		"id", e.ID,
		"action", e.Action,
		"identity", e.Identity,
	)
	return nil
}

// normalizeLimit applies default (100) and cap (1000) to a list limit.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

const filterClause = `
	WHERE (? = '' OR action = ?)
	  AND (? = '' OR identity = ?)
	  AND (? IS NULL OR ts >= ?)
`

const listQuery = `
	SELECT event_id, conn_id, action, identity, detail, ts
	FROM relay_events` + filterClause + `
	ORDER BY ts DESC, rowid DESC
	LIMIT ?
`

// filterArgs binds f to filterClause.
func filterArgs(f Filter) []any {
	var since *string
	if f.Since != nil {
		s := f.Since.UTC().Format(tsLayout)
		since = &s
	}
	return []any{f.Action, f.Action, f.Identity, f.Identity, since, since}
}

// List returns entries matching f, newest first.
func (j *SQLiteJournal) List(ctx context.Context, f Filter) ([]Entry, error) {
	args := append(filterArgs(f), normalizeLimit(f.Limit))
	rows, err := j.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &e.ConnID, &e.Action, &e.Identity, &e.Detail, &ts); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.Timestamp, err = time.Parse(tsLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries matching f. Limit is ignored.
func (j *SQLiteJournal) Count(ctx context.Context, f Filter) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM relay_events`+filterClause,
		filterArgs(f)...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting journal entries: %w", err)
	}
	return n, nil
}
