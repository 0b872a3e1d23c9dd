package testutil

import "sync"

// Journal is an ordered, append-only log of entries for tests that assert on
// call order (fixture setup and teardown, hook order).
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Log appends entry.
func (j *Journal) Log(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// Entries returns a copy of the entries in append order.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.entries))
	copy(out, j.entries)
	return out
}

// Reset drops all entries.
//
// Used for test reuse.
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = nil
}
