package port

import (
	"context"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
)

// AuthEventSink receives notifications after an auth state change has been
// committed. Sinks are invoked synchronously, in registration order; a sink
// failure is logged by the caller and never rolls back or fails the primary
// operation.
type AuthEventSink interface {
	PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error
	PublishSignedIn(ctx context.Context, event domain.SignedInEvent) error
	PublishSignedOut(ctx context.Context, event domain.SignedOutEvent) error
}
