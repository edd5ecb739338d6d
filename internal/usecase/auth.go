package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/core/port"
	"github.com/pukpuklouis/auth-service/internal/infra/logger"
	"github.com/pukpuklouis/auth-service/internal/infra/security"
	"github.com/pukpuklouis/auth-service/internal/repository"
)

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidEmail indicates the supplied email is malformed.
	ErrInvalidEmail = errors.New("invalid email address")
)

// SignInMethodCredentials marks password-based flows in published events.
const SignInMethodCredentials = "credentials"

// AuthService composes the password utility, rate limiter, credential store
// and session manager into the signup and sign-in flows. It is the only
// caller of those components.
type AuthService struct {
	users     port.UserRepository
	accounts  port.AccountRepository
	limiter   *LoginRateLimiter
	sessions  *SessionService
	validator *security.PasswordValidator
	sinks     []port.AuthEventSink
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users port.UserRepository,
	accounts port.AccountRepository,
	limiter *LoginRateLimiter,
	sessions *SessionService,
	validator *security.PasswordValidator,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &AuthService{
		users:     users,
		accounts:  accounts,
		limiter:   limiter,
		sessions:  sessions,
		validator: validator,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *AuthService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// RegisterSink appends an observer notified after state-mutating operations
// commit. Sinks run synchronously in registration order; a sink failure is
// logged and never rolls back or fails the primary operation.
func (s *AuthService) RegisterSink(sink port.AuthEventSink) {
	if sink != nil {
		s.sinks = append(s.sinks, sink)
	}
}

// CreateUser registers a password-based account. The user row and its
// default role are persisted atomically; the returned user never carries
// the password hash.
func (s *AuthService) CreateUser(ctx context.Context, email, password string, name *string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, ErrInvalidEmail
	}
	if err := s.validator.Validate(password); err != nil {
		return domain.User{}, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Roles:        []string{domain.RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateWithRole(ctx, user, domain.RoleUser); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.notifyUserCreated(ctx, user, SignInMethodCredentials)

	return user.Sanitized(), nil
}

// SignUp registers a password-based account and immediately issues a session
// for it. The session comes straight from the created user; signup never
// re-runs credential verification, so a rate-limit lockout on the identifier
// cannot block a fresh registration.
func (s *AuthService) SignUp(ctx context.Context, email, password string, name *string) (domain.User, *domain.Session, error) {
	user, err := s.CreateUser(ctx, email, password, name)
	if err != nil {
		return domain.User{}, nil, err
	}

	session, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return domain.User{}, nil, err
	}

	s.sessions.CleanupExpired(ctx)
	s.notifySignedIn(ctx, user, *session, SignInMethodCredentials)

	return user, session, nil
}

// VerifyUser checks credentials for the email. The rate limiter is
// consulted before any lookup so a locked-out caller learns nothing about
// whether the account exists. A failed check records one attempt; a
// successful one clears all attempts for the identifier.
func (s *AuthService) VerifyUser(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	if s.limiter.IsRateLimited(ctx, email) {
		return domain.User{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.limiter.RecordFailure(ctx, email)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	// OAuth-only accounts have no hash; a password login can never match.
	if user.PasswordHash == "" {
		s.limiter.RecordFailure(ctx, email)
		return domain.User{}, ErrInvalidCredentials
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.limiter.RecordFailure(ctx, email)
		return domain.User{}, ErrInvalidCredentials
	}

	s.limiter.Reset(ctx, email)

	return user.Sanitized(), nil
}

// SignIn verifies credentials and mints a session. Every successful sign-in
// also sweeps expired session rows; the sweep never fails the sign-in.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.User, *domain.Session, error) {
	user, err := s.VerifyUser(ctx, email, password)
	if err != nil {
		return domain.User{}, nil, err
	}

	session, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return domain.User{}, nil, err
	}

	s.sessions.CleanupExpired(ctx)

	s.notifySignedIn(ctx, user, *session, SignInMethodCredentials)

	return user, session, nil
}

// SignOut revokes the session for the token. Revoking an unknown token
// succeeds; sign-out is idempotent.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.Invalidate(ctx, token); err != nil {
		return err
	}

	s.notifySignedOut(ctx, token)

	return nil
}

func (s *AuthService) notifyUserCreated(ctx context.Context, user domain.User, method string) {
	event := domain.UserCreatedEvent{
		EventID:   uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Method:    method,
		CreatedAt: user.CreatedAt,
	}
	for _, sink := range s.sinks {
		if err := sink.PublishUserCreated(ctx, event); err != nil {
			s.logger.Error("user created sink failed",
				zap.String("email", logger.MaskEmail(user.Email)),
				zap.Error(err),
			)
		}
	}
}

func (s *AuthService) notifySignedIn(ctx context.Context, user domain.User, session domain.Session, method string) {
	event := domain.SignedInEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		Email:       user.Email,
		Method:      method,
		TokenPrefix: security.TokenPrefix(session.Token),
		SignedInAt:  session.CreatedAt,
		ExpiresAt:   session.ExpiresAt,
	}
	for _, sink := range s.sinks {
		if err := sink.PublishSignedIn(ctx, event); err != nil {
			s.logger.Error("signed in sink failed",
				zap.String("email", logger.MaskEmail(user.Email)),
				zap.Error(err),
			)
		}
	}
}

func (s *AuthService) notifySignedOut(ctx context.Context, token string) {
	event := domain.SignedOutEvent{
		EventID:     uuid.NewString(),
		TokenPrefix: security.TokenPrefix(token),
		SignedOutAt: s.now(),
	}
	for _, sink := range s.sinks {
		if err := sink.PublishSignedOut(ctx, event); err != nil {
			s.logger.Error("signed out sink failed", zap.Error(err))
		}
	}
}
