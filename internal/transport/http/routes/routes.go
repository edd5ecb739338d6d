package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pukpuklouis/auth-service/internal/core/port"
	"github.com/pukpuklouis/auth-service/internal/infra/config"
	"github.com/pukpuklouis/auth-service/internal/infra/telemetry"
	"github.com/pukpuklouis/auth-service/internal/provider"
	"github.com/pukpuklouis/auth-service/internal/transport/http/handlers"
	"github.com/pukpuklouis/auth-service/internal/transport/http/middleware"
	"github.com/pukpuklouis/auth-service/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth     *usecase.AuthService
	Sessions *usecase.SessionService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Services  ServiceSet
	Users     port.UserRepository
	Providers *provider.Registry
	Metrics   *middleware.HTTPMetrics
	Telemetry *telemetry.Provider
	Database  DatabaseChecker
	Cache     CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sessionMiddleware := middleware.RequireSession(deps.Services.Sessions, deps.Users)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Telemetry, deps.Logger)
		authHandler.RegisterRoutes(authGroup, sessionMiddleware)

		if deps.Providers != nil {
			oauthHandler := handlers.NewOAuthHandler(
				deps.Services.Auth,
				deps.Providers,
				deps.Config.Session.Secret,
				deps.Telemetry,
				deps.Logger,
			)
			oauthHandler.RegisterRoutes(authGroup)
		}
	}

	return r
}
