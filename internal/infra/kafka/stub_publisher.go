package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event sink.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserCreated logs auth.user.created events.
func (p *StubPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"email":      event.Email,
		"name":       event.Name,
		"method":     event.Method,
		"created_at": event.CreatedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("auth.user.created", event.UserID, event.CreatedAt, payload)
	return nil
}

// PublishSignedIn logs auth.session.created events.
func (p *StubPublisher) PublishSignedIn(_ context.Context, event domain.SignedInEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"email":        event.Email,
		"method":       event.Method,
		"token_prefix": event.TokenPrefix,
		"signed_in_at": event.SignedInAt,
		"expires_at":   event.ExpiresAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("auth.session.created", event.UserID, event.SignedInAt, payload)
	return nil
}

// PublishSignedOut logs auth.session.revoked events.
func (p *StubPublisher) PublishSignedOut(_ context.Context, event domain.SignedOutEvent) error {
	payload := map[string]any{
		"token_prefix":  event.TokenPrefix,
		"signed_out_at": event.SignedOutAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("auth.session.revoked", "", event.SignedOutAt, payload)
	return nil
}

var _ port.AuthEventSink = (*StubPublisher)(nil)
