package auth

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	// SessionTokenPrefix marks login-session tokens.
	SessionTokenPrefix = "vds_"

	// APIKeyPrefix marks tenant API keys.
	APIKeyPrefix = "vdk_"

	sessionTokenBytes = 24
	apiKeyBytes       = 32
)

// NewSessionToken generates a fresh random session token.
func NewSessionToken() (string, error) {
	return newToken(SessionTokenPrefix, sessionTokenBytes)
}

// NewAPIKey generates a fresh random tenant API key.
func NewAPIKey() (string, error) {
	return newToken(APIKeyPrefix, apiKeyBytes)
}

func newToken(prefix string, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return prefix + base58.Encode(buf), nil
}
