package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSessionCode returns a high-entropy URL-safe code. Session
// codes are the only public identifier for a session, so they must be
// unguessable.
func GenerateSessionCode() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
