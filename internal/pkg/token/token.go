package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewIdempotencyKey generates a random 32-character hex key that lets a
// provider recognise retries of the same request.
func NewIdempotencyKey() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate idempotency key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
