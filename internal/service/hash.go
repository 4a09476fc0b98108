package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword produces the deterministic digest stored in hashed_pass.
// Login resolves users by (email, hashed_pass) equality, which requires
// the same input to always hash to the same value.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
