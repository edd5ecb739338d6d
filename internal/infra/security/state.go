package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidState indicates the OAuth state token failed verification.
var ErrInvalidState = errors.New("invalid oauth state")

type stateClaims struct {
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// SignOAuthState mints a short-lived HMAC-signed state token binding the
// authorization redirect to the provider it was issued for. The random jti
// makes each redirect's state unique.
func SignOAuthState(secret, provider string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("state signing secret is required")
	}
	if ttl == 0 {
		ttl = 10 * time.Minute
	}

	now := time.Now().UTC()
	claims := stateClaims{
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}

	return signed, nil
}

// VerifyOAuthState checks the signature and expiry of a state token and
// returns the provider it was bound to.
func VerifyOAuthState(secret, state string) (string, error) {
	claims := &stateClaims{}
	token, err := jwt.ParseWithClaims(state, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidState
	}

	if claims.Provider == "" {
		return "", ErrInvalidState
	}

	return claims.Provider, nil
}
