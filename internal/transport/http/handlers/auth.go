package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/infra/logger"
	"github.com/pukpuklouis/auth-service/internal/infra/security"
	"github.com/pukpuklouis/auth-service/internal/infra/telemetry"
	"github.com/pukpuklouis/auth-service/internal/transport/http/middleware"
	"github.com/pukpuklouis/auth-service/internal/usecase"
)

// AuthHandler exposes password-based authentication endpoints.
type AuthHandler struct {
	auth    *usecase.AuthService
	metrics *telemetry.Provider
	logger  *zap.Logger
}

// NewAuthHandler constructs AuthHandler. metrics may be nil.
func NewAuthHandler(auth *usecase.AuthService, metrics *telemetry.Provider, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{auth: auth, metrics: metrics, logger: log}
}

// RegisterRoutes binds the authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, sessionMiddleware gin.HandlerFunc) {
	r.POST("/signup", h.signUp)
	r.POST("/signin", h.signIn)
	r.POST("/signout", sessionMiddleware, h.signOut)
	r.GET("/session", sessionMiddleware, h.session)
}

func (h *AuthHandler) signUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid signup payload"})
		return
	}

	// A fresh signup also gets a session, same as a login. The session is
	// minted directly from the created user, so a rate-limit lockout on the
	// email never blocks registration.
	user, session, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		var validationErr *security.PasswordValidationError
		switch {
		case errors.Is(err, usecase.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid email address"})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Error()})
		case errors.Is(err, usecase.ErrEmailTaken):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "email already registered"})
		default:
			h.logger.Error("signup failed",
				zap.String("email", logger.MaskEmail(req.Email)),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "operation failed"})
		}
		return
	}

	h.metrics.RecordSignIn(usecase.SignInMethodCredentials, telemetry.OutcomeSuccess)
	setSessionCookie(c, session)
	c.JSON(http.StatusCreated, SignInResponse{
		User:    newUserSummary(user),
		Session: newSessionSummary(*session),
	})
}

func (h *AuthHandler) signIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid signin payload"})
		return
	}

	user, session, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrRateLimited):
			h.metrics.RecordSignIn(usecase.SignInMethodCredentials, telemetry.OutcomeRateLimited)
			h.metrics.RecordLockout()
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many failed attempts, try again later"})
		case errors.Is(err, usecase.ErrInvalidCredentials):
			h.metrics.RecordSignIn(usecase.SignInMethodCredentials, telemetry.OutcomeInvalid)
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		default:
			h.metrics.RecordSignIn(usecase.SignInMethodCredentials, telemetry.OutcomeError)
			h.logger.Error("signin failed",
				zap.String("email", logger.MaskEmail(req.Email)),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "operation failed"})
		}
		return
	}

	h.metrics.RecordSignIn(usecase.SignInMethodCredentials, telemetry.OutcomeSuccess)
	setSessionCookie(c, session)
	c.JSON(http.StatusOK, SignInResponse{
		User:    newUserSummary(user),
		Session: newSessionSummary(*session),
	})
}

func (h *AuthHandler) signOut(c *gin.Context) {
	token, ok := middleware.TokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	if err := h.auth.SignOut(c.Request.Context(), token); err != nil {
		h.logger.Error("signout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "operation failed"})
		return
	}

	clearSessionCookie(c)
	c.JSON(http.StatusOK, MessageResponse{Message: "signed out"})
}

func setSessionCookie(c *gin.Context, session *domain.Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge <= 0 {
		return
	}
	c.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", c.Request.TLS != nil, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
}

func (h *AuthHandler) session(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	session, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		User:    newUserSummary(user),
		Session: newSessionSummary(*session),
	})
}
