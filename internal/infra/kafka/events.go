package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/core/port"
	"github.com/pukpuklouis/auth-service/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.AuthEventSink using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed auth event sink.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserCreated publishes auth.user.created events.
func (p *EventPublisher) PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		Email     string         `json:"email"`
		Name      *string        `json:"name,omitempty"`
		Method    string         `json:"method"`
		CreatedAt time.Time      `json:"created_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		Email:     event.Email,
		Name:      event.Name,
		Method:    event.Method,
		CreatedAt: event.CreatedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.user.created", event.UserID, event.CreatedAt, payload)
}

// PublishSignedIn publishes auth.session.created events.
func (p *EventPublisher) PublishSignedIn(ctx context.Context, event domain.SignedInEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		Email       string         `json:"email"`
		Method      string         `json:"method"`
		TokenPrefix string         `json:"token_prefix"`
		SignedInAt  time.Time      `json:"signed_in_at"`
		ExpiresAt   time.Time      `json:"expires_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		Email:       event.Email,
		Method:      event.Method,
		TokenPrefix: event.TokenPrefix,
		SignedInAt:  event.SignedInAt.UTC(),
		ExpiresAt:   event.ExpiresAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.session.created", event.UserID, event.SignedInAt, payload)
}

// PublishSignedOut publishes auth.session.revoked events.
func (p *EventPublisher) PublishSignedOut(ctx context.Context, event domain.SignedOutEvent) error {
	payload := struct {
		TokenPrefix string         `json:"token_prefix"`
		SignedOutAt time.Time      `json:"signed_out_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		TokenPrefix: event.TokenPrefix,
		SignedOutAt: event.SignedOutAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.session.revoked", "", event.SignedOutAt, payload)
}

var _ port.AuthEventSink = (*EventPublisher)(nil)
