// Package review implements a keyed store of movie reviews.
//
// A review is identified by the pair (title, author). Its storage slot is
// derived from that pair alone, so callers never handle sequential IDs:
//
//	key := review.KeyFor("Dune", alice)
//
// # Lifecycle
//
// Each key moves between two states, absent and present:
//
//   - [Store.Create] moves absent to present and reserves [InitSpace] bytes
//   - [Store.Update] rewrites rating and description in place
//   - [Store.Delete] moves present to absent and releases the reservation
//
// Create validates rating and field lengths. Update does not: it accepts any
// rating and description and resizes the reservation to fit, see
// [ResizedSpace].
//
// # Authorization
//
// The Store trusts the author it is given. Presenting the author identity
// that created a record is the only proof of ownership; authenticating that
// identity happens upstream.
//
// # Storage
//
// Records are persisted through a [Ledger]. Implementations live in
// memstore (in memory), sqlstore (SQLite) and store (DynamoDB).
//
// # Errors
//
//   - [ErrInvalidRating] - rating outside [MinRating, MaxRating]
//   - [ErrTitleTooLong] - title longer than [MaxTitleLength] bytes
//   - [ErrDescriptionTooLong] - description longer than [MaxDescriptionLength] bytes
//   - [ErrAlreadyExists] - create on an occupied key
//   - [ErrNotFound] - update, delete or get on a missing key
package review
