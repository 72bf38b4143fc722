package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateToken returns a URL-safe random token with the given entropy in
// bytes. Invite and password-reset tokens both use 32 bytes.
func GenerateToken(numBytes int) (string, error) {
	if numBytes <= 0 {
		return "", fmt.Errorf("token length must be positive")
	}
	raw := make([]byte, numBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
