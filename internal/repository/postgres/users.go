package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/core/port"
	"github.com/pukpuklouis/auth-service/internal/repository"
)

type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	txs     txStarter
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that
// satisfies pgExecutor. Transactions require the executor to also support
// Begin, which both pgxpool.Pool and the pgxmock pool do.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if starter, ok := exec.(txStarter); ok {
		repo.txs = starter
	}
	return repo
}

// CreateWithRole inserts the user row and its initial role assignment in a
// single transaction. Concurrent signups for the same email race at the
// database; the unique index on email is the correctness backstop, and the
// loser surfaces repository.ErrAlreadyExists.
func (r *UserRepository) CreateWithRole(ctx context.Context, user domain.User, role string) error {
	if r.txs == nil {
		return fmt.Errorf("user repository: executor does not support transactions")
	}

	tx, err := r.txs.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var hashValue any
	if user.PasswordHash != "" {
		hashValue = user.PasswordHash
	}

	stmt, args, err := r.builder.Insert("users").
		Columns(
			"id",
			"email",
			"name",
			"image",
			"email_verified",
			"password_hash",
			"created_at",
			"updated_at",
		).
		Values(
			user.ID,
			user.Email,
			user.Name,
			user.Image,
			user.EmailVerified,
			hashValue,
			user.CreatedAt,
			user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	roleStmt, roleArgs, err := r.builder.Insert("user_roles").
		Columns("user_id", "role").
		Values(user.ID, role).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role sql: %w", err)
	}

	if _, err := tx.Exec(ctx, roleStmt, roleArgs...); err != nil {
		return fmt.Errorf("insert default role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a fully hydrated user, roles included.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

// GetByID retrieves a fully hydrated user, roles included.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

func (r *UserRepository) getBy(ctx context.Context, pred squirrel.Eq) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(
			"id",
			"email",
			"name",
			"image",
			"email_verified",
			"password_hash",
			"created_at",
			"updated_at",
		).
		From("users").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		user          domain.User
		name          sql.NullString
		image         sql.NullString
		emailVerified *time.Time
		passwordHash  sql.NullString
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&name,
		&image,
		&emailVerified,
		&passwordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if name.Valid {
		val := name.String
		user.Name = &val
	}
	if image.Valid {
		val := image.String
		user.Image = &val
	}
	user.EmailVerified = emailVerified
	if passwordHash.Valid {
		user.PasswordHash = passwordHash.String
	}

	roles, err := r.rolesFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return &user, nil
}

func (r *UserRepository) rolesFor(ctx context.Context, userID string) ([]string, error) {
	stmt, args, err := r.builder.Select("role").
		From("user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("role ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query user roles: %w", err)
	}
	defer rows.Close()

	roles := make([]string, 0, 1)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan user role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user roles: %w", err)
	}

	return roles, nil
}

// UpdateProfile syncs mutable profile fields after an OAuth sign-in. Nil
// arguments leave the stored value untouched.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, name, image *string, emailVerified *time.Time) error {
	update := r.builder.Update("users").
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id})

	if name != nil {
		update = update.Set("name", *name)
	}
	if image != nil {
		update = update.Set("image", *image)
	}
	if emailVerified != nil {
		update = update.Set("email_verified", *emailVerified)
	}

	stmt, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update profile sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ port.UserRepository = (*UserRepository)(nil)
