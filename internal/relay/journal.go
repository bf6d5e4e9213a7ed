// ABOUTME: Relay event types and the journal sink the router reports to
// ABOUTME: Events are emitted after the router lock is released

package relay

import "context"

// Action names a relay event.
type Action string

const (
	ActionRegistered        Action = "registered"
	ActionRegisterRejected  Action = "register_rejected"
	ActionCommandStored     Action = "command_stored"
	ActionCommandRejected   Action = "command_rejected"
	ActionCommandDelivered  Action = "command_delivered"
	ActionResponseStored    Action = "response_stored"
	ActionResponseDropped   Action = "response_dropped"
	ActionResponseDelivered Action = "response_delivered"
	ActionListed            Action = "listed"
	ActionMalformed         Action = "malformed"
	ActionNotFound          Action = "not_found"
)

// Event describes one thing the router did while handling a request.
type Event struct {
	ConnID   string
	Action   Action
	Identity string
	Detail   string
}

// Journal receives router events. Implementations must not block for long;
// failures are the journal's concern and never reach the peer.
type Journal interface {
	Record(ctx context.Context, ev Event)
}

// nopJournal discards events.
type nopJournal struct{}

func (nopJournal) Record(context.Context, Event) {}
