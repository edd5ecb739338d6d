package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/repository"
)

// stubAttemptStore is an in-memory port.LoginAttemptStore with fault
// injection for the fail-open path.
type stubAttemptStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	countErr error
	writeErr error
}

func newStubAttemptStore() *stubAttemptStore {
	return &stubAttemptStore{attempts: make(map[string][]time.Time)}
}

func (s *stubAttemptStore) RecordFailure(_ context.Context, identifier string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.attempts[identifier] = append(s.attempts[identifier], at)
	return nil
}

func (s *stubAttemptStore) CountFailuresSince(_ context.Context, identifier string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	count := 0
	for _, at := range s.attempts[identifier] {
		if !at.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *stubAttemptStore) Clear(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	delete(s.attempts, identifier)
	return nil
}

func (s *stubAttemptStore) total(identifier string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts[identifier])
}

// stubSessionStore is an in-memory port.SessionStore.
type stubSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]domain.Session
	createErr error
	sweepErr  error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *stubSessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.sessions[session.Token] = session
	return nil
}

func (s *stubSessionStore) GetByToken(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (s *stubSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *stubSessionStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sweepErr != nil {
		return 0, s.sweepErr
	}
	var removed int64
	for token, session := range s.sessions {
		if session.ExpiresAt.Before(before) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (s *stubSessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// stubUserRepo is an in-memory port.UserRepository keyed by email.
type stubUserRepo struct {
	mu        sync.Mutex
	byEmail   map[string]domain.User
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]domain.User)}
}

func (s *stubUserRepo) CreateWithRole(_ context.Context, user domain.User, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return repository.ErrAlreadyExists
	}
	user.Roles = []string{role}
	s.byEmail[user.Email] = user
	return nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byEmail {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepo) UpdateProfile(_ context.Context, id string, name, image *string, emailVerified *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, user := range s.byEmail {
		if user.ID != id {
			continue
		}
		if name != nil {
			user.Name = name
		}
		if image != nil {
			user.Image = image
		}
		if emailVerified != nil {
			user.EmailVerified = emailVerified
		}
		s.byEmail[email] = user
		return nil
	}
	return repository.ErrNotFound
}

// stubAccountRepo is an in-memory port.AccountRepository.
type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]domain.Account)}
}

func accountKey(provider, providerAccountID string) string {
	return provider + "/" + providerAccountID
}

func (s *stubAccountRepo) Create(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := accountKey(account.Provider, account.ProviderAccountID)
	if _, exists := s.accounts[key]; exists {
		return repository.ErrAlreadyExists
	}
	s.accounts[key] = account
	return nil
}

func (s *stubAccountRepo) GetByProvider(_ context.Context, provider, providerAccountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountKey(provider, providerAccountID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}

// recordingSink captures published events and can simulate failures.
type recordingSink struct {
	mu       sync.Mutex
	created  []domain.UserCreatedEvent
	signIns  []domain.SignedInEvent
	signOuts []domain.SignedOutEvent
	fail     error
}

func (s *recordingSink) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.created = append(s.created, event)
	return nil
}

func (s *recordingSink) PublishSignedIn(_ context.Context, event domain.SignedInEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.signIns = append(s.signIns, event)
	return nil
}

func (s *recordingSink) PublishSignedOut(_ context.Context, event domain.SignedOutEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.signOuts = append(s.signOuts, event)
	return nil
}
