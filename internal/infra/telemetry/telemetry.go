package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pukpuklouis/auth-service/internal/infra/config"
)

// Sign-in outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid_credentials"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Provider records the authentication metrics that live outside the HTTP
// middleware: sign-in outcomes per method and rate-limit lockouts. Request
// counts and latencies are the middleware's job.
type Provider struct {
	signInCounter  *prometheus.CounterVec
	lockoutCounter prometheus.Counter
}

// Attach registers the authentication metrics on the default registerer and
// returns the provider handle the handlers record through.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	return NewProvider(prometheus.DefaultRegisterer)
}

// NewProvider registers the collectors with reg, adopting instances
// registered earlier in the process.
func NewProvider(reg prometheus.Registerer) (*Provider, error) {
	signIns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "sign_ins_total",
		Help:      "Total number of sign-in attempts by method and outcome",
	}, []string{"method", "outcome"})

	if err := register(reg, &signIns); err != nil {
		return nil, err
	}

	lockouts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "lockouts_total",
		Help:      "Total number of attempts rejected by the login rate limiter",
	})

	if err := register(reg, &lockouts); err != nil {
		return nil, err
	}

	return &Provider{
		signInCounter:  signIns,
		lockoutCounter: lockouts,
	}, nil
}

// register adds the collector pointed to by target, swapping in the already
// registered instance when one exists.
func register[T prometheus.Collector](reg prometheus.Registerer, target *T) error {
	if err := reg.Register(*target); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return fmt.Errorf("register collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		*target = existing
	}
	return nil
}

// RecordSignIn counts one sign-in attempt for the method with the outcome.
func (p *Provider) RecordSignIn(method, outcome string) {
	if p == nil || p.signInCounter == nil {
		return
	}
	p.signInCounter.WithLabelValues(method, outcome).Inc()
}

// RecordLockout counts one attempt rejected because the identifier is
// locked out.
func (p *Provider) RecordLockout() {
	if p == nil || p.lockoutCounter == nil {
		return
	}
	p.lockoutCounter.Inc()
}
