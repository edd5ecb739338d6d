package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pukpuklouis/auth-service/internal/core/port"
)

// SlidingWindowConfig defines configuration for the sliding-window store.
type SlidingWindowConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

// LoginAttemptStore persists failed-login timestamps in Redis sorted sets.
// It is behaviorally equivalent to the PostgreSQL login_attempts backend for
// the rate-limit check, minus the audit trail.
type LoginAttemptStore struct {
	client *redis.Client
	cfg    SlidingWindowConfig
}

// NewLoginAttemptStore constructs a store using the provided client and config.
func NewLoginAttemptStore(client *redis.Client, cfg SlidingWindowConfig) *LoginAttemptStore {
	return &LoginAttemptStore{client: client, cfg: cfg}
}

// RecordFailure stores the attempt timestamp and refreshes the key TTL.
func (s *LoginAttemptStore) RecordFailure(ctx context.Context, identifier string, at time.Time) error {
	key := s.key(identifier)
	member := redis.Z{Score: float64(at.UnixNano()), Member: at.UnixNano()}

	if err := s.client.ZAdd(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("redis zadd: %w", err)
	}

	if s.cfg.TTL > 0 {
		if err := s.client.Expire(ctx, key, s.cfg.TTL).Err(); err != nil {
			return fmt.Errorf("redis expire: %w", err)
		}
	}

	return nil
}

// CountFailuresSince returns how many failures were recorded at or after since.
func (s *LoginAttemptStore) CountFailuresSince(ctx context.Context, identifier string, since time.Time) (int, error) {
	key := s.key(identifier)

	count, err := s.client.ZCount(ctx, key, windowStart(since), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("redis zcount: %w", err)
	}

	return int(count), nil
}

// Clear drops every recorded attempt for the identifier.
func (s *LoginAttemptStore) Clear(ctx context.Context, identifier string) error {
	if err := s.client.Del(ctx, s.key(identifier)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// windowStart renders the inclusive ZCount lower bound. Formatting the
// nanosecond timestamp as an integer keeps the boundary exact; a float64
// round-trip would shift it.
func windowStart(since time.Time) string {
	return strconv.FormatInt(since.UnixNano(), 10)
}

func (s *LoginAttemptStore) key(identifier string) string {
	if s.cfg.KeyPrefix == "" {
		return identifier
	}
	return fmt.Sprintf("%s:%s", s.cfg.KeyPrefix, identifier)
}

var _ port.LoginAttemptStore = (*LoginAttemptStore)(nil)
