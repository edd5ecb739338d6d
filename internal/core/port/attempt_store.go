package port

import (
	"context"
	"time"
)

// LoginAttemptStore defines the persistence operations required to enforce
// the login lockout window. Implementations exist for PostgreSQL (the
// audit-friendly default) and Redis sorted sets.
type LoginAttemptStore interface {
	RecordFailure(ctx context.Context, identifier string, at time.Time) error
	// CountFailuresSince counts failed attempts recorded at or after since.
	CountFailuresSince(ctx context.Context, identifier string, since time.Time) (int, error)
	// Clear drops all attempts for the identifier.
	Clear(ctx context.Context, identifier string) error
}
