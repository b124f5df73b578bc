// Package keys derives storage keys for review records.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
)

// RecordKey computes the content-derived key for a record seeded by title and author.
func RecordKey(title string, author []byte) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write(author)
	return hex.EncodeToString(h.Sum(nil))
}

// AccountKey returns the partition key of an author's reservation account.
func AccountKey(author []byte) string {
	return "author#" + hex.EncodeToString(author)
}

// Stripe maps a record key onto one of numStripes lock stripes.
// With numStripes<=1, every key maps to stripe 0.
func Stripe(key string, numStripes int) int {
	if numStripes <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(numStripes))
}

// StripeLabel formats a stripe number as two hex digits.
func StripeLabel(stripe int) string {
	return fmt.Sprintf("%02x", stripe)
}
