// ABOUTME: Bounded, insertion-ordered directory of relay agents.
// ABOUTME: Creates records on first sight and refuses new identities once full.

package agent

import "errors"

// DefaultCapacity is the number of distinct identities a directory holds
// when no capacity is configured.
const DefaultCapacity = 50

// ErrDirectoryFull indicates the directory has no slot for a new identity.
var ErrDirectoryFull = errors.New("agent directory full")

// Entry is one row of a directory listing.
type Entry struct {
	DisplayName string
	Identity    string
}

// Directory owns every Record. It is not safe for concurrent use; callers
// serialize access.
type Directory struct {
	records  []*Record
	capacity int
}

// NewDirectory creates an empty directory holding at most capacity records.
// A non-positive capacity falls back to DefaultCapacity.
func NewDirectory(capacity int) *Directory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Directory{
		records:  make([]*Record, 0, capacity),
		capacity: capacity,
	}
}

// Find returns the record with exactly the given identity.
func (d *Directory) Find(identity string) (*Record, bool) {
	for _, r := range d.records {
		if r.Identity == identity {
			return r, true
		}
	}
	return nil, false
}

// RegisterOrGet returns the existing record for identity, or creates one
// named name if capacity remains. A known identity keeps its original
// display name. Returns nil, false when the directory is full.
func (d *Directory) RegisterOrGet(identity, name string) (*Record, bool) {
	if r, ok := d.Find(identity); ok {
		return r, true
	}
	if len(d.records) >= d.capacity {
		return nil, false
	}

	r := &Record{
		Identity:    identity,
		DisplayName: name,
	}
	d.records = append(d.records, r)
	return r, true
}

// Register is RegisterOrGet with the full-directory case reported as
// ErrDirectoryFull.
func (d *Directory) Register(identity, name string) (*Record, error) {
	r, ok := d.RegisterOrGet(identity, name)
	if !ok {
		return nil, ErrDirectoryFull
	}
	return r, nil
}

// List returns every record as (display name, identity), in insertion order.
func (d *Directory) List() []Entry {
	entries := make([]Entry, len(d.records))
	for i, r := range d.records {
		entries[i] = Entry{DisplayName: r.DisplayName, Identity: r.Identity}
	}
	return entries
}

// Len reports the number of records.
func (d *Directory) Len() int {
	return len(d.records)
}

// Capacity reports the maximum number of records.
func (d *Directory) Capacity() int {
	return d.capacity
}
