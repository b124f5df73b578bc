// Package store provides a DynamoDB-backed review.Ledger.
//
// Reviews live in a record table keyed by the content-derived review key.
// Each author has an account item in a second table tracking the bytes
// reserved by its live reviews. Every ledger call runs as a single
// TransactWriteItems so the record write and the reservation change
// commit together.
//
// # Tables
//
// Record table (partition key "pk", string):
//
//	pk          review key (hex sha256 of title and author)
//	author      hex author identity
//	title       review title
//	data        encoded review (binary)
//	capacity    reserved bytes
//	version     optimistic lock version
//	created_at  ISO 8601 creation timestamp
//	updated_at  ISO 8601 last update timestamp
//
// Account table (partition key "pk", string):
//
//	pk          "author#<hex>"
//	reserved    bytes reserved across live reviews
//	records     number of live reviews
//
// # Configuration
//
// Use [DefaultConfig] for the default table names:
//
//	s := store.New(dynamodb.NewFromConfig(awsCfg), store.DefaultConfig())
//	reviews := review.New(s, review.DefaultConfig())
//
// # Errors
//
// Conditional failures map onto the review package sentinels:
//
//   - review.ErrAlreadyExists - create on an occupied key
//   - review.ErrNotFound - replace or delete on a missing key
//   - review.ErrConcurrentModification - the record changed between read and write
package store
