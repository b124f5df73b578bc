// Package memstore provides an in-memory review.Ledger.
package memstore

import (
	"context"
	"sync"

	"github.com/jacentio/moviereview/review"
)

// Ledger keeps entries and reservations in maps guarded by a single mutex.
type Ledger struct {
	mu       sync.Mutex
	entries  map[review.Key]review.Entry
	reserved map[review.Author]int64
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{
		entries:  make(map[review.Key]review.Entry),
		reserved: make(map[review.Author]int64),
	}
}

// Get returns a copy of the entry at key.
func (l *Ledger) Get(_ context.Context, key review.Key) (*review.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return nil, review.ErrNotFound
	}
	e.Data = clone(e.Data)
	return &e, nil
}

// Create stores entry at key and charges its capacity to the owner.
func (l *Ledger) Create(_ context.Context, key review.Key, entry review.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[key]; ok {
		return review.ErrAlreadyExists
	}
	entry.Data = clone(entry.Data)
	l.entries[key] = entry
	l.reserved[entry.Owner] += entry.Capacity
	return nil
}

// Replace overwrites the entry at key and moves the capacity delta.
func (l *Ledger) Replace(_ context.Context, key review.Key, entry review.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	old, ok := l.entries[key]
	if !ok {
		return review.ErrNotFound
	}
	entry.Data = clone(entry.Data)
	l.entries[key] = entry
	l.release(old.Owner, old.Capacity)
	l.reserved[entry.Owner] += entry.Capacity
	return nil
}

// Delete removes the entry at key and refunds its capacity to owner.
func (l *Ledger) Delete(_ context.Context, key review.Key, owner review.Author) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	old, ok := l.entries[key]
	if !ok {
		return 0, review.ErrNotFound
	}
	delete(l.entries, key)
	l.release(owner, old.Capacity)
	return old.Capacity, nil
}

// Reserved returns the bytes reserved by owner.
func (l *Ledger) Reserved(_ context.Context, owner review.Author) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reserved[owner], nil
}

// Len returns the number of live entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) release(owner review.Author, n int64) {
	l.reserved[owner] -= n
	if l.reserved[owner] == 0 {
		delete(l.reserved, owner)
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
