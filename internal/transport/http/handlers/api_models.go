package handlers

import (
	"time"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes the view of a user returned by the API. The
// password hash is never part of any response shape.
type UserSummary struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          *string    `json:"name,omitempty"`
	Image         *string    `json:"image,omitempty"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
	Roles         []string   `json:"roles,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newUserSummary(user domain.User) UserSummary {
	return UserSummary{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Image:         user.Image,
		EmailVerified: user.EmailVerified,
		Roles:         user.Roles,
		CreatedAt:     user.CreatedAt,
	}
}

// SignUpRequest defines the payload for the signup endpoint.
type SignUpRequest struct {
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Name     *string `json:"name"`
}

// SignInRequest defines the payload for the signin endpoint.
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionSummary describes an active session in API responses.
type SessionSummary struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newSessionSummary(session domain.Session) SessionSummary {
	return SessionSummary{
		Token:     session.Token,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}
}

// SignInResponse is returned for a successful signup or signin.
type SignInResponse struct {
	User    UserSummary    `json:"user"`
	Session SessionSummary `json:"session"`
}

// SessionResponse describes the current session for an authenticated caller.
type SessionResponse struct {
	User    UserSummary    `json:"user"`
	Session SessionSummary `json:"session"`
}

// ProviderListResponse lists the OAuth providers enabled by configuration.
type ProviderListResponse struct {
	Providers []string `json:"providers"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}
