package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/core/port"
	"github.com/pukpuklouis/auth-service/internal/usecase"
)

const (
	// SessionKey holds the *domain.Session for the authenticated request.
	SessionKey = "session"
	// UserKey holds the sanitized domain.User for the authenticated request.
	UserKey = "user"
	// TokenKey holds the raw bearer token for the authenticated request.
	TokenKey = "session_token"

	// SessionCookie is the fallback token carrier for browser clients that
	// cannot set an Authorization header.
	SessionCookie = "auth_token"
)

// ErrorResponse is the generic error payload emitted by middleware.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RequireSession validates the bearer session token and loads the owning
// user into the request context.
func RequireSession(sessions *usecase.SessionService, users port.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				ErrorResponse{Error: "missing or malformed authorization header"})
			return
		}

		session, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrSessionNotFound), errors.Is(err, usecase.ErrSessionExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					ErrorResponse{Error: "invalid or expired session"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					ErrorResponse{Error: "authentication failed"})
			}
			return
		}

		user, err := users.GetByID(c.Request.Context(), session.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				ErrorResponse{Error: "invalid or expired session"})
			return
		}

		c.Set(SessionKey, session)
		c.Set(UserKey, user.Sanitized())
		c.Set(TokenKey, token)

		c.Next()
	}
}

// SessionFromContext retrieves the validated session placed by RequireSession.
func SessionFromContext(c *gin.Context) (*domain.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*domain.Session)
	return session, ok
}

// UserFromContext retrieves the authenticated user placed by RequireSession.
func UserFromContext(c *gin.Context) (domain.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return domain.User{}, false
	}
	user, ok := value.(domain.User)
	return user, ok
}

// TokenFromContext retrieves the raw session token placed by RequireSession.
func TokenFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(TokenKey)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}

// bearerToken extracts the session token from the Authorization header,
// falling back to the session cookie.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
			return cookie, true
		}
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
