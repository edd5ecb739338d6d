package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/core/port"
	"github.com/pukpuklouis/auth-service/internal/repository"
)

// AccountRepository implements port.AccountRepository for PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs an AccountRepository.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an account link. The unique index on
// (provider, provider_account_id) rejects duplicate links.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Insert("accounts").
		Columns("id", "user_id", "provider", "provider_account_id", "created_at").
		Values(account.ID, account.UserID, account.Provider, account.ProviderAccountID, account.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByProvider looks an account up by its provider identity pair.
func (r *AccountRepository) GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "provider", "provider_account_id", "created_at").
		From("accounts").
		Where(squirrel.Eq{
			"provider":            provider,
			"provider_account_id": providerAccountID,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Provider,
		&account.ProviderAccountID,
		&account.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return &account, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
