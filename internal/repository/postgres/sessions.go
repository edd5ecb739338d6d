package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/core/port"
	"github.com/pukpuklouis/auth-service/internal/repository"
)

// SessionRepository implements port.SessionStore for PostgreSQL. Tokens are
// the primary key of the sessions table; there is no separate id.
type SessionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(exec pgExecutor) *SessionRepository {
	return &SessionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a session row. An insert failure is load-bearing for the
// caller: a session that was not persisted must not be treated as issued.
func (r *SessionRepository) Create(ctx context.Context, session domain.Session) error {
	stmt, args, err := r.builder.Insert("sessions").
		Columns("token", "user_identifier", "created_at", "expires_at").
		Values(session.Token, session.UserID, session.CreatedAt, session.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetByToken returns the session owning the supplied token.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	stmt, args, err := r.builder.
		Select("token", "user_identifier", "created_at", "expires_at").
		From("sessions").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var session domain.Session
	if err := row.Scan(
		&session.Token,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return &session, nil
}

// Delete removes the matching session row. Deleting an absent token is not
// an error; sign-out is idempotent.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	stmt, args, err := r.builder.Delete("sessions").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete session sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// DeleteExpired sweeps rows whose expiry is strictly before the supplied
// moment, leaving future-expiring rows intact.
func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	stmt, args, err := r.builder.Delete("sessions").
		Where(squirrel.Lt{"expires_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired sessions sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	return ct.RowsAffected(), nil
}

var _ port.SessionStore = (*SessionRepository)(nil)
