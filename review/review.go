package review

import (
	"encoding/hex"
	"fmt"

	"github.com/jacentio/moviereview/internal/keys"
)

const (
	MinRating uint8 = 1
	MaxRating uint8 = 5

	// MaxTitleLength and MaxDescriptionLength are byte lengths of the UTF-8 text.
	MaxTitleLength       = 20
	MaxDescriptionLength = 50

	// AuthorSize is the size of an Author identity in bytes.
	AuthorSize = 32
)

// Author is the opaque identity of the account that created a review.
type Author [AuthorSize]byte

// ParseAuthor parses a hex-encoded author identity.
func ParseAuthor(s string) (Author, error) {
	var a Author
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("parse author: %w", err)
	}
	if len(b) != AuthorSize {
		return a, fmt.Errorf("parse author: want %d bytes, got %d", AuthorSize, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// String returns the hex encoding of the identity.
func (a Author) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether a is the zero identity.
func (a Author) IsZero() bool {
	return a == Author{}
}

// Review is a single movie review.
type Review struct {
	// Author created the review. Immutable.
	Author Author

	// Title is part of the review's identity. Immutable.
	Title string

	// Description is free text, rewritten by Update.
	Description string

	// Rating is rewritten by Update.
	Rating uint8
}

// Key returns the storage key of the review.
func (r *Review) Key() Key {
	return KeyFor(r.Title, r.Author)
}

// Key locates a review in a Ledger.
type Key string

// KeyFor derives the key of the review written by author under title.
func KeyFor(title string, author Author) Key {
	return Key(keys.RecordKey(title, author[:]))
}

// validate checks the constraints enforced on create.
func validate(title, description string, rating uint8) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: %d bytes, max %d", ErrTitleTooLong, len(title), MaxTitleLength)
	}
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: %d bytes, max %d", ErrDescriptionTooLong, len(description), MaxDescriptionLength)
	}
	return nil
}
