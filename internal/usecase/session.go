package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/core/port"
	"github.com/pukpuklouis/auth-service/internal/infra/security"
	"github.com/pukpuklouis/auth-service/internal/repository"
)

var (
	// ErrSessionNotFound indicates no session row exists for the token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates the session row exists but has expired.
	ErrSessionExpired = errors.New("session expired")
)

// DefaultSessionTTL is applied when no TTL is configured (7 days).
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionService coordinates session token issuance, validation, revocation
// and expiry sweeping.
type SessionService struct {
	sessions port.SessionStore
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(sessions port.SessionStore, ttl time.Duration, log *zap.Logger) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		sessions: sessions,
		ttl:      ttl,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *SessionService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Issue mints a fresh token and persists the session row. A storage failure
// here is load-bearing: an unpersisted session must never be handed out.
func (s *SessionService) Issue(ctx context.Context, userID string) (*domain.Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	token, err := security.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := domain.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &session, nil
}

// Validate resolves a token to its session. A token is valid iff the row
// exists and its expiry is in the future; there is no revocation list.
func (s *SessionService) Validate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if !session.IsValid(s.now()) {
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Invalidate removes the session row for the token. Deleting an absent
// token is a no-op; sign-out is idempotent.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// CleanupExpired sweeps rows whose expiry is strictly before now.
// Best-effort: the count is logged and failures never propagate.
func (s *SessionService) CleanupExpired(ctx context.Context) {
	removed, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("sweep expired sessions", zap.Error(err))
		return
	}

	if removed > 0 {
		s.logger.Info("swept expired sessions", zap.Int64("removed", removed))
	}
}
