package utils

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashString returns the hex SHA1 of s. Used to build fixed-length
// cache keys out of arbitrary item identifiers.
func HashString(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
