package port

import (
	"context"
	"time"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
)

// SessionStore deals with session token persistence. The token column is the
// primary key; validity is purely "row exists and has not expired".
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes rows whose expiry is strictly before the supplied
	// moment and reports how many were swept.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
