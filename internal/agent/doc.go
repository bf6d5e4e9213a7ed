// Package agent holds the relay's directory of known agents and their
// single-slot mailboxes.
//
// # Overview
//
// A Directory is a bounded, insertion-ordered collection of Records keyed by
// identity (the agent's self-reported address). Each Record carries two
// mailboxes: one pending command and one pending response. A mailbox holds at
// most one value; taking it returns the value and clears the slot.
//
// # Directory
//
//	dir := agent.NewDirectory(agent.DefaultCapacity)
//
// Key operations:
//
//   - Find(identity): exact-match lookup in insertion order
//   - RegisterOrGet(identity, name): existing record, or a new one while capacity remains
//   - Register(identity, name): same, but reports ErrDirectoryFull
//   - List(): (display name, identity) pairs in insertion order
//
// Once full, the directory refuses new identities. Records are never removed
// and display names are never overwritten after creation.
//
// # Mailboxes
//
//	rec.SetCommand("whoami")
//	cmd, ok := rec.TakeCommand() // "whoami", true
//	_, ok = rec.TakeCommand()    // "", false
//
// Writes overwrite (last write wins); nothing is queued.
//
// # Thread Safety
//
// Directory and Record do no locking of their own. The relay router holds a
// single mutex for the full span of each request, and every access goes
// through it.
package agent
