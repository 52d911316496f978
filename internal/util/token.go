package util

import (
	"crypto/rand"
	"encoding/base64"
)

// NewShareToken returns a 256-bit random identifier in URL-safe encoding.
// Tokens are opaque; uniqueness is enforced by the storage layer.
func NewShareToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
