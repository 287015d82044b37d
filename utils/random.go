package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateCode returns 2n hex characters of cryptographic randomness.
// Used for session tokens and request ids.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return hex.EncodeToString(byt), nil
}
