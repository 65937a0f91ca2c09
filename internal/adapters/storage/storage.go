// Package storage holds the journal implementations used to keep a record of
// normalization runs.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// DefaultListLimit caps List when no positive limit is given.
const DefaultListLimit = 50

// Hash returns the hex sha256 of text, used to identify page revisions.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
