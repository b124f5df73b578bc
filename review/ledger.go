package review

import "context"

// Entry is a record as held by a Ledger.
type Entry struct {
	// Owner is the author the reservation is charged to.
	Owner Author

	// Title is kept alongside the encoded bytes for backends that index it.
	Title string

	// Data holds the encoded review, see Encode.
	Data []byte

	// Capacity is the number of bytes reserved for the record.
	Capacity int64
}

// Ledger is the storage substrate behind a Store. Every call is atomic:
// the record write and the owner's reservation change commit together or
// not at all.
type Ledger interface {
	// Get returns the entry at key, or ErrNotFound.
	Get(ctx context.Context, key Key) (*Entry, error)

	// Create stores a new entry and charges entry.Capacity to entry.Owner.
	// Returns ErrAlreadyExists if key is occupied.
	Create(ctx context.Context, key Key, entry Entry) error

	// Replace overwrites the entry at key and adjusts the owner's
	// reservation by the difference in capacity. Returns ErrNotFound if key
	// is empty.
	Replace(ctx context.Context, key Key, entry Entry) error

	// Delete removes the entry at key and releases its capacity back to
	// owner, returning the number of bytes released. Returns ErrNotFound if
	// key is empty.
	Delete(ctx context.Context, key Key, owner Author) (int64, error)

	// Reserved returns the bytes currently reserved by owner.
	Reserved(ctx context.Context, owner Author) (int64, error)
}
