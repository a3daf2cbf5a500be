package services

import (
	"crypto/rand"
	"encoding/base64"
)

// stateLength is the number of random bytes in an OAuth state value.
const stateLength = 32

// GenerateState creates a random state parameter for CSRF protection.
func GenerateState() (string, error) {
	bytes := make([]byte, stateLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
