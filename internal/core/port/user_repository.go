package port

import (
	"context"
	"time"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
)

// UserRepository exposes persistence behavior for users and their roles.
type UserRepository interface {
	// CreateWithRole inserts the user row and its initial role assignment
	// atomically: both succeed or neither does. A duplicate email surfaces
	// as repository.ErrAlreadyExists.
	CreateWithRole(ctx context.Context, user domain.User, role string) error
	// GetByEmail returns the hydrated user including aggregated roles, or
	// repository.ErrNotFound for an absent row.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// UpdateProfile syncs mutable profile fields from an external provider.
	UpdateProfile(ctx context.Context, id string, name, image *string, emailVerified *time.Time) error
}

// AccountRepository persists links between users and external OAuth identities.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	// GetByProvider looks an account up by its unique
	// (provider, providerAccountID) pair.
	GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error)
}
