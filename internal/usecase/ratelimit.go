package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pukpuklouis/auth-service/internal/core/port"
	"github.com/pukpuklouis/auth-service/internal/infra/logger"
)

// ErrRateLimited indicates the identifier is locked out of login attempts.
var ErrRateLimited = errors.New("too many failed login attempts")

const (
	defaultLockoutWindow = 15 * time.Minute
	defaultMaxAttempts   = 5
)

// LoginRateLimiter enforces the login lockout window over a
// port.LoginAttemptStore.
type LoginRateLimiter struct {
	store       port.LoginAttemptStore
	window      time.Duration
	maxAttempts int
	logger      *zap.Logger
	now         func() time.Time
}

// NewLoginRateLimiter constructs a limiter. Non-positive window or attempt
// values fall back to the defaults (15 minutes, 5 attempts).
func NewLoginRateLimiter(store port.LoginAttemptStore, window time.Duration, maxAttempts int, log *zap.Logger) *LoginRateLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	if window <= 0 {
		window = defaultLockoutWindow
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &LoginRateLimiter{
		store:       store,
		window:      window,
		maxAttempts: maxAttempts,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (l *LoginRateLimiter) WithClock(clock func() time.Time) {
	if clock != nil {
		l.now = clock
	}
}

// IsRateLimited reports whether the identifier has reached the attempt
// ceiling inside the lockout window. Reaching the ceiling exactly locks out.
// On storage failure the check fails open: availability wins over
// strictness for an advisory check.
func (l *LoginRateLimiter) IsRateLimited(ctx context.Context, identifier string) bool {
	since := l.now().Add(-l.window)

	count, err := l.store.CountFailuresSince(ctx, identifier, since)
	if err != nil {
		l.logger.Error("rate limit check failed, failing open",
			zap.String("identifier", logger.MaskIdentifier(identifier)),
			zap.Error(err),
		)
		return false
	}

	return count >= l.maxAttempts
}

// RecordFailure appends one failed attempt for the identifier. Storage
// failure is logged, never surfaced.
func (l *LoginRateLimiter) RecordFailure(ctx context.Context, identifier string) {
	if err := l.store.RecordFailure(ctx, identifier, l.now()); err != nil {
		l.logger.Error("record failed login attempt",
			zap.String("identifier", logger.MaskIdentifier(identifier)),
			zap.Error(err),
		)
	}
}

// Reset drops all recorded attempts for the identifier. Called only after a
// verified successful login; storage failure is logged, never surfaced.
func (l *LoginRateLimiter) Reset(ctx context.Context, identifier string) {
	if err := l.store.Clear(ctx, identifier); err != nil {
		l.logger.Error("clear login attempts",
			zap.String("identifier", logger.MaskIdentifier(identifier)),
			zap.Error(err),
		)
	}
}
