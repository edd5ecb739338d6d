package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/pukpuklouis/auth-service/internal/core/port"
	"github.com/pukpuklouis/auth-service/internal/infra/config"
	"github.com/pukpuklouis/auth-service/internal/infra/database"
	kafkainfra "github.com/pukpuklouis/auth-service/internal/infra/kafka"
	"github.com/pukpuklouis/auth-service/internal/infra/logger"
	redisinfra "github.com/pukpuklouis/auth-service/internal/infra/redis"
	"github.com/pukpuklouis/auth-service/internal/infra/security"
	"github.com/pukpuklouis/auth-service/internal/infra/telemetry"
	"github.com/pukpuklouis/auth-service/internal/provider"
	postgresrepo "github.com/pukpuklouis/auth-service/internal/repository/postgres"
	redisrepo "github.com/pukpuklouis/auth-service/internal/repository/redis"
	"github.com/pukpuklouis/auth-service/internal/transport/http/middleware"
	"github.com/pukpuklouis/auth-service/internal/transport/http/routes"
	"github.com/pukpuklouis/auth-service/internal/usecase"
)

// Application wires configuration, storage, services and transport together.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	tracer   *telemetry.TracerProvider
	producer *kafkainfra.Producer
}

// New builds a fully wired application from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metricsProvider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.OTLPEndpoint != "" {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	// The attempt store defaults to Postgres so failed logins stay
	// auditable; Redis is opt-in for high-traffic deployments.
	var attemptStore port.LoginAttemptStore = repos.Attempts
	var redisClient *redisinfra.Client
	if cfg.RateLimit.Backend == "redis" {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		attemptStore = redisrepo.NewLoginAttemptStore(redisClient.Client(), redisrepo.SlidingWindowConfig{
			KeyPrefix: "auth:login-attempts",
			TTL:       cfg.RateLimit.Window * 2,
		})
	}

	var eventSink port.AuthEventSink
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			producer = nil
			eventSink = kafkainfra.NewStubPublisher(log)
		} else {
			eventSink = kafkainfra.NewEventPublisher(producer, cfg.App, log)
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventSink = kafkainfra.NewStubPublisher(log)
	}

	limiter := usecase.NewLoginRateLimiter(attemptStore, cfg.RateLimit.Window, cfg.RateLimit.MaxAttempts, log)
	sessionService := usecase.NewSessionService(repos.Sessions, cfg.Session.TTL, log)
	authService := usecase.NewAuthService(
		repos.Users,
		repos.Accounts,
		limiter,
		sessionService,
		security.DefaultPasswordValidator(),
		log,
	)
	authService.RegisterSink(eventSink)

	providers := provider.FromConfig(cfg.Providers)
	log.Info("oauth providers configured", zap.Strings("providers", providers.Names()))

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	deps := routes.Dependencies{
		Config:    cfg,
		Logger:    log,
		Users:     repos.Users,
		Providers: providers,
		Metrics:   metrics,
		Telemetry: metricsProvider,
		Database:  pool,
		Services: routes.ServiceSet{
			Auth:     authService,
			Sessions: sessionService,
		},
	}
	if redisClient != nil {
		deps.Cache = redisClient
	}

	engine := routes.Register(deps)

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		tracer:   tracer,
		producer: producer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down cleanly.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			_ = a.tracer.Shutdown(context.Background())
		}
	}()
	// Flushes buffered events and stops the error-drain goroutine.
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
