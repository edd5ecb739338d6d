package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pukpuklouis/auth-service/internal/infra/security"
	"github.com/pukpuklouis/auth-service/internal/infra/telemetry"
	"github.com/pukpuklouis/auth-service/internal/provider"
	"github.com/pukpuklouis/auth-service/internal/usecase"
)

// stateTTL bounds how long an authorization redirect stays redeemable.
const stateTTL = 10 * time.Minute

// OAuthHandler drives the OAuth redirect and callback flows for the
// configured providers.
type OAuthHandler struct {
	auth        *usecase.AuthService
	providers   *provider.Registry
	stateSecret string
	metrics     *telemetry.Provider
	logger      *zap.Logger
}

// NewOAuthHandler constructs OAuthHandler. metrics may be nil.
func NewOAuthHandler(auth *usecase.AuthService, providers *provider.Registry, stateSecret string, metrics *telemetry.Provider, log *zap.Logger) *OAuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OAuthHandler{
		auth:        auth,
		providers:   providers,
		stateSecret: stateSecret,
		metrics:     metrics,
		logger:      log,
	}
}

// RegisterRoutes binds the OAuth routes.
func (h *OAuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/providers", h.listProviders)
	r.GET("/redirect/:provider", h.redirect)
	r.GET("/callback/:provider", h.callback)
}

func (h *OAuthHandler) listProviders(c *gin.Context) {
	c.JSON(http.StatusOK, ProviderListResponse{Providers: h.providers.Names()})
}

func (h *OAuthHandler) redirect(c *gin.Context) {
	name := c.Param("provider")

	p, err := h.providers.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown provider"})
		return
	}

	state, err := security.SignOAuthState(h.stateSecret, name, stateTTL)
	if err != nil {
		h.logger.Error("sign oauth state", zap.String("provider", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "operation failed"})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, p.AuthCodeURL(state))
}

func (h *OAuthHandler) callback(c *gin.Context) {
	name := c.Param("provider")

	p, err := h.providers.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown provider"})
		return
	}

	stateProvider, err := security.VerifyOAuthState(h.stateSecret, c.Query("state"))
	if err != nil || stateProvider != name {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid state parameter"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing authorization code"})
		return
	}

	token, err := p.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("code exchange failed", zap.String("provider", name), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "authorization code exchange failed"})
		return
	}

	profile, err := p.Profile(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("profile fetch failed", zap.String("provider", name), zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "provider profile fetch failed"})
		return
	}

	user, session, err := h.auth.OAuthSignIn(c.Request.Context(), name, profile)
	if err != nil {
		h.metrics.RecordSignIn(name, telemetry.OutcomeError)
		switch {
		case errors.Is(err, usecase.ErrEmailRequired):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "provider did not supply an email address"})
		case errors.Is(err, usecase.ErrEmailTaken):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "email already registered"})
		default:
			h.logger.Error("oauth signin failed", zap.String("provider", name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "operation failed"})
		}
		return
	}

	h.metrics.RecordSignIn(name, telemetry.OutcomeSuccess)
	setSessionCookie(c, session)
	c.JSON(http.StatusOK, SignInResponse{
		User:    newUserSummary(user),
		Session: newSessionSummary(*session),
	})
}
