package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText returns the hex sha256 of the given text. Used to keep the
// transcript identity index small while still covering the full text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
