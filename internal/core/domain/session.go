package domain

import "time"

// Session represents an active bearer session. The token is the primary key
// and the only secret; there is no separate revocation list.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsValid reports whether the session grants access at the supplied moment.
// A session is valid only while the row exists and has not expired.
func (s Session) IsValid(at time.Time) bool {
	return s.ExpiresAt.After(at)
}
