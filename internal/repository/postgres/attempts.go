package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/pukpuklouis/auth-service/internal/core/port"
)

// LoginAttemptRepository implements port.LoginAttemptStore over the
// login_attempts table. This is the default backend; the Redis sliding
// window in repository/redis serves deployments that prefer to keep
// attempt counters out of the relational store.
type LoginAttemptRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewLoginAttemptRepository constructs a LoginAttemptRepository.
func NewLoginAttemptRepository(exec pgExecutor) *LoginAttemptRepository {
	return &LoginAttemptRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// RecordFailure appends one failed attempt row.
func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, identifier string, at time.Time) error {
	stmt, args, err := r.builder.Insert("login_attempts").
		Columns("identifier", "timestamp", "success").
		Values(identifier, at, false).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert attempt sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	return nil
}

// CountFailuresSince counts failed attempts at or after the window start.
// Older rows are ignored, not purged; Clear removes them in bulk on a
// successful login.
func (r *LoginAttemptRepository) CountFailuresSince(ctx context.Context, identifier string, since time.Time) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("login_attempts").
		Where(squirrel.Eq{"identifier": identifier, "success": false}).
		Where(squirrel.GtOrEq{"timestamp": since}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count attempts sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan attempts count: %w", err)
	}

	return int(count), nil
}

// Clear deletes all attempt rows for the identifier.
func (r *LoginAttemptRepository) Clear(ctx context.Context, identifier string) error {
	stmt, args, err := r.builder.Delete("login_attempts").
		Where(squirrel.Eq{"identifier": identifier}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear attempts sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}

	return nil
}

var _ port.LoginAttemptStore = (*LoginAttemptRepository)(nil)
