// ABOUTME: Adapts the SQLite journal to the router's event sink
// ABOUTME: Write failures are logged and never surface to relay peers

package gateway

import (
	"context"
	"log/slog"

	"github.com/2389/coven-relay/internal/relay"
	"github.com/2389/coven-relay/internal/store"
)

// entryAppender is the part of store.SQLiteJournal the gateway writes to.
type entryAppender interface {
	Append(ctx context.Context, e *store.Entry) error
}

// journalSink forwards router events to a store journal.
type journalSink struct {
	store  entryAppender
	logger *slog.Logger
}

func (j *journalSink) Record(ctx context.Context, ev relay.Event) {
	err := j.store.Append(ctx, &store.Entry{
		ConnID:   ev.ConnID,
		Action:   string(ev.Action),
		Identity: ev.Identity,
		Detail:   ev.Detail,
	})
	if err != nil {
		j.logger.Warn("journal append failed", "action", ev.Action, "error", err)
	}
}
