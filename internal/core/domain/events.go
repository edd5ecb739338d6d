package domain

import "time"

// UserCreatedEvent represents the payload for auth.user.created messages.
type UserCreatedEvent struct {
	EventID   string
	UserID    string
	Email     string
	Name      *string
	Method    string // "credentials" or the OAuth provider name
	CreatedAt time.Time
	Metadata  map[string]any
}

// SignedInEvent represents the payload for auth.session.created messages.
// TokenPrefix carries only the leading characters of the session token.
type SignedInEvent struct {
	EventID     string
	UserID      string
	Email       string
	Method      string
	TokenPrefix string
	SignedInAt  time.Time
	ExpiresAt   time.Time
	Metadata    map[string]any
}

// SignedOutEvent represents the payload for auth.session.revoked messages.
type SignedOutEvent struct {
	EventID     string
	TokenPrefix string
	SignedOutAt time.Time
	Metadata    map[string]any
}
