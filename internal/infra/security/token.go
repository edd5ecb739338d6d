package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// sessionTokenBytes yields a 64-character hex token.
const sessionTokenBytes = 32

// GenerateSessionToken returns 32 bytes of cryptographically secure
// randomness, hex-encoded. Collisions are negligible at this size.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// TokenPrefix truncates a token for log output. Full tokens must never be
// written to logs.
func TokenPrefix(token string) string {
	const visible = 8
	if len(token) <= visible {
		return token
	}
	return token[:visible] + "..."
}
