package domain

import "time"

// LoginAttempt is an audit record of one failed login for an identifier
// (email or client IP, at the caller's discretion). Attempts older than the
// lockout window are ignored by the rate-limit check but are not required
// to be purged immediately.
type LoginAttempt struct {
	Identifier string
	Succeeded  bool
	CreatedAt  time.Time
}
