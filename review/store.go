package review

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jacentio/moviereview/internal/keys"
)

// Store creates, updates and deletes reviews against a Ledger.
type Store struct {
	ledger Ledger
	logger *slog.Logger
	locks  []sync.Mutex
}

// New creates a new Store instance.
func New(ledger Ledger, config Config) *Store {
	config.validate()
	return &Store{
		ledger: ledger,
		logger: config.Logger,
		locks:  make([]sync.Mutex, config.LockStripes),
	}
}

func (s *Store) stripe(key Key) int {
	return keys.Stripe(string(key), len(s.locks))
}

// lock acquires the stripe guarding key and returns its release func.
func (s *Store) lock(key Key) func() {
	mu := &s.locks[s.stripe(key)]
	mu.Lock()
	return mu.Unlock
}

// Create validates and stores a new review, reserving InitSpace bytes for it.
func (s *Store) Create(ctx context.Context, author Author, title, description string, rating uint8) (*Review, error) {
	if err := validate(title, description, rating); err != nil {
		return nil, err
	}

	r := &Review{
		Author:      author,
		Title:       title,
		Description: description,
		Rating:      rating,
	}
	key := r.Key()

	unlock := s.lock(key)
	defer unlock()

	err := s.ledger.Create(ctx, key, Entry{
		Owner:    author,
		Title:    title,
		Data:     Encode(r),
		Capacity: InitSpace,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "movie review created",
		"key", key,
		"stripe", keys.StripeLabel(s.stripe(key)),
		"title", title,
		"description", description,
		"rating", rating,
	)
	return r, nil
}

// Update rewrites the rating and description of an existing review.
// Neither value is validated; the reservation is resized to fit description.
func (s *Store) Update(ctx context.Context, author Author, title, description string, rating uint8) (*Review, error) {
	key := KeyFor(title, author)

	unlock := s.lock(key)
	defer unlock()

	current, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	next := &Review{
		Author:      current.Author,
		Title:       current.Title,
		Description: description,
		Rating:      rating,
	}
	capacity := ResizedSpace(description)

	err = s.ledger.Replace(ctx, key, Entry{
		Owner:    author,
		Title:    current.Title,
		Data:     Encode(next),
		Capacity: capacity,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "movie review space reallocated",
		"key", key,
		"stripe", keys.StripeLabel(s.stripe(key)),
		"title", title,
		"description", description,
		"rating", rating,
		"capacity", capacity,
	)
	return next, nil
}

// Delete removes a review and releases its reservation to author.
func (s *Store) Delete(ctx context.Context, author Author, title string) error {
	key := KeyFor(title, author)

	unlock := s.lock(key)
	defer unlock()

	released, err := s.ledger.Delete(ctx, key, author)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "movie review deleted",
		"key", key,
		"stripe", keys.StripeLabel(s.stripe(key)),
		"title", title,
		"released", released,
	)
	return nil
}

// Get returns the review written by author under title, or ErrNotFound.
func (s *Store) Get(ctx context.Context, author Author, title string) (*Review, error) {
	key := KeyFor(title, author)

	unlock := s.lock(key)
	defer unlock()

	return s.load(ctx, key)
}

// Reserved returns the bytes reserved by author across its live reviews.
func (s *Store) Reserved(ctx context.Context, author Author) (int64, error) {
	return s.ledger.Reserved(ctx, author)
}

func (s *Store) load(ctx context.Context, key Key) (*Review, error) {
	entry, err := s.ledger.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return Decode(entry.Data)
}
