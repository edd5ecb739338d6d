package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/repository"
)

// ErrEmailRequired indicates the provider exposed no email address and no
// existing account matches the external identity, so no user can be
// created for it.
var ErrEmailRequired = errors.New("provider returned no email address")

// OAuthSignIn resolves a normalized provider profile to a local user and
// mints a session. A known (provider, external id) pair signs into its
// linked user and syncs mutable profile fields; an unknown pair creates a
// fresh user and account link. An unknown identity whose email collides
// with an existing user fails with ErrEmailTaken rather than silently
// linking the two.
func (s *AuthService) OAuthSignIn(ctx context.Context, providerName string, profile domain.NormalizedProfile) (domain.User, *domain.Session, error) {
	if providerName == "" || profile.ID == "" {
		return domain.User{}, nil, fmt.Errorf("provider name and external id are required")
	}

	account, err := s.accounts.GetByProvider(ctx, providerName, profile.ID)
	switch {
	case err == nil:
		return s.oauthSignInExisting(ctx, providerName, *account, profile)
	case errors.Is(err, repository.ErrNotFound):
		return s.oauthSignUp(ctx, providerName, profile)
	default:
		return domain.User{}, nil, fmt.Errorf("lookup account: %w", err)
	}
}

func (s *AuthService) oauthSignInExisting(ctx context.Context, providerName string, account domain.Account, profile domain.NormalizedProfile) (domain.User, *domain.Session, error) {
	user, err := s.users.GetByID(ctx, account.UserID)
	if err != nil {
		return domain.User{}, nil, fmt.Errorf("lookup user for account: %w", err)
	}

	if err := s.syncProfile(ctx, user, profile); err != nil {
		return domain.User{}, nil, err
	}

	session, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return domain.User{}, nil, err
	}

	s.sessions.CleanupExpired(ctx)
	s.notifySignedIn(ctx, *user, *session, providerName)

	return user.Sanitized(), session, nil
}

func (s *AuthService) oauthSignUp(ctx context.Context, providerName string, profile domain.NormalizedProfile) (domain.User, *domain.Session, error) {
	if profile.Email == nil || *profile.Email == "" {
		return domain.User{}, nil, ErrEmailRequired
	}

	now := s.now()
	user := domain.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(*profile.Email),
		Image:     profile.Image,
		Roles:     []string{domain.RoleUser},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if profile.Name != "" {
		name := profile.Name
		user.Name = &name
	}
	if profile.EmailVerified != nil && *profile.EmailVerified {
		verifiedAt := now
		user.EmailVerified = &verifiedAt
	}

	if err := s.users.CreateWithRole(ctx, user, domain.RoleUser); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return domain.User{}, nil, ErrEmailTaken
		}
		return domain.User{}, nil, fmt.Errorf("create user: %w", err)
	}

	account := domain.Account{
		ID:                uuid.NewString(),
		UserID:            user.ID,
		Provider:          providerName,
		ProviderAccountID: profile.ID,
		CreatedAt:         now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return domain.User{}, nil, fmt.Errorf("create account link: %w", err)
	}

	s.notifyUserCreated(ctx, user, providerName)

	session, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return domain.User{}, nil, err
	}

	s.sessions.CleanupExpired(ctx)
	s.notifySignedIn(ctx, user, *session, providerName)

	return user.Sanitized(), session, nil
}

// syncProfile pushes the provider's current name, image and verification
// state onto the stored user. Verification is one-way: a provider can mark
// an email verified but never un-verify it.
func (s *AuthService) syncProfile(ctx context.Context, user *domain.User, profile domain.NormalizedProfile) error {
	var name *string
	if profile.Name != "" && (user.Name == nil || *user.Name != profile.Name) {
		n := profile.Name
		name = &n
	}

	var image *string
	if profile.Image != nil && (user.Image == nil || *user.Image != *profile.Image) {
		image = profile.Image
	}

	var verifiedAt *time.Time
	if user.EmailVerified == nil && profile.EmailVerified != nil && *profile.EmailVerified {
		at := s.now()
		verifiedAt = &at
	}

	if name == nil && image == nil && verifiedAt == nil {
		return nil
	}

	if err := s.users.UpdateProfile(ctx, user.ID, name, image, verifiedAt); err != nil {
		return fmt.Errorf("sync profile: %w", err)
	}

	if name != nil {
		user.Name = name
	}
	if image != nil {
		user.Image = image
	}
	if verifiedAt != nil {
		user.EmailVerified = verifiedAt
	}

	return nil
}
