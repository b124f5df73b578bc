package review

import "errors"

var (
	// ErrInvalidRating is returned when a rating falls outside [MinRating, MaxRating].
	ErrInvalidRating = errors.New("moviereview: rating must be between 1 and 5")

	// ErrTitleTooLong is returned when a title exceeds MaxTitleLength bytes.
	ErrTitleTooLong = errors.New("moviereview: movie title too long")

	// ErrDescriptionTooLong is returned when a description exceeds MaxDescriptionLength bytes.
	ErrDescriptionTooLong = errors.New("moviereview: movie description too long")

	// ErrAlreadyExists is returned when creating a review on an occupied key.
	ErrAlreadyExists = errors.New("moviereview: review already exists")

	// ErrNotFound is returned when no review exists at the key.
	ErrNotFound = errors.New("moviereview: review not found")

	// ErrInvalidRecord is returned when stored bytes do not decode as a review.
	ErrInvalidRecord = errors.New("moviereview: invalid review record")

	// ErrConcurrentModification is returned when a backend conditional write loses a race.
	ErrConcurrentModification = errors.New("moviereview: review was modified concurrently")
)
