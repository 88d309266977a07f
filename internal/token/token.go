// Package token mints opaque download tokens.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Size is the number of random bytes behind each token (256 bits).
const Size = 32

// Generate returns a hex-encoded random token. It does not check for
// collisions; the link store's unique index is the authority on that.
func Generate() (string, error) {
	b := make([]byte, Size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Short returns a prefix of tok that is safe to put in logs.
func Short(tok string) string {
	if len(tok) <= 8 {
		return tok
	}
	return tok[:8]
}
