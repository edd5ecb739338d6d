package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/infra/security"
)

func newTestAuthService(t *testing.T, users *stubUserRepo, accounts *stubAccountRepo, attempts *stubAttemptStore, sessions *stubSessionStore) *AuthService {
	t.Helper()

	log := zaptest.NewLogger(t)
	limiter := NewLoginRateLimiter(attempts, 15*time.Minute, 5, log)
	sessionService := NewSessionService(sessions, 7*24*time.Hour, log)

	return NewAuthService(users, accounts, limiter, sessionService, security.DefaultPasswordValidator(), log)
}

func TestCreateUserAssignsDefaultRole(t *testing.T) {
	users := newStubUserRepo()
	svc := newTestAuthService(t, users, newStubAccountRepo(), newStubAttemptStore(), newStubSessionStore())

	name := "Alice"
	user, err := svc.CreateUser(context.Background(), "Alice@Example.com", "correct horse battery staple", &name)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash != "" {
		t.Fatal("returned user must not carry the password hash")
	}
	if !user.HasRole(domain.RoleUser) {
		t.Fatalf("expected default role, got %v", user.Roles)
	}

	stored, err := users.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail after create: %v", err)
	}
	ok, err := security.VerifyPassword("correct horse battery staple", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash must verify the original password (ok=%v err=%v)", ok, err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	users := newStubUserRepo()
	svc := newTestAuthService(t, users, newStubAccountRepo(), newStubAttemptStore(), newStubSessionStore())

	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "alice@example.com", "correct horse battery staple", nil); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}

	_, err := svc.CreateUser(ctx, "alice@example.com", "another strong passphrase", nil)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateUserRejectsBadInput(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), newStubAccountRepo(), newStubAttemptStore(), newStubSessionStore())

	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "not-an-email", "correct horse battery staple", nil); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	var validationErr *security.PasswordValidationError
	if _, err := svc.CreateUser(ctx, "alice@example.com", "short", nil); !errors.As(err, &validationErr) {
		t.Fatalf("expected password validation error, got %v", err)
	}
}

func TestVerifyUserClearsAttemptsOnSuccess(t *testing.T) {
	users := newStubUserRepo()
	attempts := newStubAttemptStore()
	svc := newTestAuthService(t, users, newStubAccountRepo(), attempts, newStubSessionStore())

	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "alice@example.com", "correct horse battery staple", nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.VerifyUser(ctx, "alice@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if attempts.total("alice@example.com") != 3 {
		t.Fatalf("expected 3 recorded attempts, got %d", attempts.total("alice@example.com"))
	}

	user, err := svc.VerifyUser(ctx, "alice@example.com", "correct horse battery staple")
	if err != nil {
		t.Fatalf("VerifyUser: %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatal("verified user must be sanitized")
	}
	if attempts.total("alice@example.com") != 0 {
		t.Fatalf("expected attempts cleared, got %d", attempts.total("alice@example.com"))
	}
}

func TestVerifyUserLockoutBlocksCorrectPassword(t *testing.T) {
	users := newStubUserRepo()
	svc := newTestAuthService(t, users, newStubAccountRepo(), newStubAttemptStore(), newStubSessionStore())

	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "alice@example.com", "correct horse battery staple", nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := svc.VerifyUser(ctx, "alice@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// The 6th attempt is refused before the password is even checked.
	if _, err := svc.VerifyUser(ctx, "alice@example.com", "correct horse battery staple"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on 6th attempt, got %v", err)
	}
}

func TestSignUpIssuesSessionDespiteLockedIdentifier(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionStore()
	svc := newTestAuthService(t, users, newStubAccountRepo(), newStubAttemptStore(), sessions)

	sink := &recordingSink{}
	svc.RegisterSink(sink)

	ctx := context.Background()

	// Five failed logins against a not-yet-registered address lock the
	// identifier out of password verification.
	for i := 0; i < 5; i++ {
		if _, err := svc.VerifyUser(ctx, "alice@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	if _, err := svc.VerifyUser(ctx, "alice@example.com", "any password"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected lockout before signup, got %v", err)
	}

	// Registration mints the session from the created user directly, so the
	// lockout must not block it.
	user, session, err := svc.SignUp(ctx, "alice@example.com", "correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if session == nil || session.UserID != user.ID {
		t.Fatalf("expected session for %s, got %+v", user.ID, session)
	}
	if sessions.count() != 1 {
		t.Fatalf("expected 1 stored session, got %d", sessions.count())
	}
	if len(sink.created) != 1 || len(sink.signIns) != 1 {
		t.Fatalf("expected 1 created and 1 sign-in event, got %d/%d", len(sink.created), len(sink.signIns))
	}
	if sink.signIns[0].Method != SignInMethodCredentials {
		t.Fatalf("unexpected method %q", sink.signIns[0].Method)
	}
}

func TestVerifyUserUnknownEmailIsGeneric(t *testing.T) {
	attempts := newStubAttemptStore()
	svc := newTestAuthService(t, newStubUserRepo(), newStubAccountRepo(), attempts, newStubSessionStore())

	_, err := svc.VerifyUser(context.Background(), "ghost@example.com", "whatever password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if attempts.total("ghost@example.com") != 1 {
		t.Fatal("unknown email must still record a failed attempt")
	}
}

func TestVerifyUserOAuthOnlyAccountRejectsPassword(t *testing.T) {
	users := newStubUserRepo()
	users.byEmail["oauth@example.com"] = domain.User{
		ID:    "user-oauth",
		Email: "oauth@example.com",
		Roles: []string{domain.RoleUser},
	}
	svc := newTestAuthService(t, users, newStubAccountRepo(), newStubAttemptStore(), newStubSessionStore())

	if _, err := svc.VerifyUser(context.Background(), "oauth@example.com", "any password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for hashless account, got %v", err)
	}
}

func TestSignInIssuesSessionAndNotifiesSinks(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionStore()
	svc := newTestAuthService(t, users, newStubAccountRepo(), newStubAttemptStore(), sessions)

	sink := &recordingSink{}
	svc.RegisterSink(sink)

	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "alice@example.com", "correct horse battery staple", nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	user, session, err := svc.SignIn(ctx, "alice@example.com", "correct horse battery staple")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if session == nil || session.UserID != user.ID {
		t.Fatalf("expected session for %s, got %+v", user.ID, session)
	}
	if sessions.count() != 1 {
		t.Fatalf("expected 1 stored session, got %d", sessions.count())
	}

	if len(sink.created) != 1 || len(sink.signIns) != 1 {
		t.Fatalf("expected 1 created and 1 sign-in event, got %d/%d", len(sink.created), len(sink.signIns))
	}
	if sink.signIns[0].Method != SignInMethodCredentials {
		t.Fatalf("unexpected method %q", sink.signIns[0].Method)
	}
	if sink.signIns[0].TokenPrefix == session.Token {
		t.Fatal("events must carry a truncated token, never the full one")
	}
}

func TestSignInSweepFailureDoesNotFailSignIn(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionStore()
	sessions.sweepErr = errors.New("sweep failed")
	svc := newTestAuthService(t, users, newStubAccountRepo(), newStubAttemptStore(), sessions)

	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "alice@example.com", "correct horse battery staple", nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, _, err := svc.SignIn(ctx, "alice@example.com", "correct horse battery staple"); err != nil {
		t.Fatalf("sweep failure must not fail sign-in, got %v", err)
	}
}

func TestSinkFailureDoesNotFailOperation(t *testing.T) {
	users := newStubUserRepo()
	svc := newTestAuthService(t, users, newStubAccountRepo(), newStubAttemptStore(), newStubSessionStore())

	sink := &recordingSink{fail: errors.New("broker down")}
	svc.RegisterSink(sink)

	if _, err := svc.CreateUser(context.Background(), "alice@example.com", "correct horse battery staple", nil); err != nil {
		t.Fatalf("sink failure must not fail CreateUser, got %v", err)
	}
}

func TestSignOutIsIdempotentAndNotifies(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionStore()
	svc := newTestAuthService(t, users, newStubAccountRepo(), newStubAttemptStore(), sessions)

	sink := &recordingSink{}
	svc.RegisterSink(sink)

	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "alice@example.com", "correct horse battery staple", nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, session, err := svc.SignIn(ctx, "alice@example.com", "correct horse battery staple")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if err := svc.SignOut(ctx, session.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if err := svc.SignOut(ctx, session.Token); err != nil {
		t.Fatalf("second SignOut must succeed, got %v", err)
	}
	if len(sink.signOuts) != 2 {
		t.Fatalf("expected 2 sign-out events, got %d", len(sink.signOuts))
	}
}
