package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of an auth token. The hex encoding doubles it,
// so issued tokens are 64 characters long.
const tokenBytes = 32

// GenerateToken returns a new opaque bearer token: the hex encoding of 32
// cryptographically random bytes. A fresh token is generated on every
// registration and every successful login, replacing the previous value.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate auth token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
