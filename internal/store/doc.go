// Package store provides the relay's append-only event journal.
//
// # Overview
//
// The journal records what the relay did (registrations, stored and
// delivered commands, dropped responses, malformed requests) in a SQLite
// database using the pure-Go modernc.org/sqlite driver. It is write-mostly:
// the relay appends, and the CLI lists.
//
// The journal is never read back to rebuild directory or mailbox state. A
// relay restart always begins with an empty directory.
//
// # Usage
//
//	j, err := store.NewSQLiteJournal("/var/lib/coven/relay-journal.db")
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//
//	err = j.Append(ctx, &store.Entry{Action: "registered", Identity: "10.0.0.5"})
//	entries, err := j.List(ctx, store.Filter{Identity: "10.0.0.5", Limit: 20})
//
// # Thread Safety
//
// SQLiteJournal is safe for concurrent use; database/sql pools connections
// and SQLite serializes writers.
package store
