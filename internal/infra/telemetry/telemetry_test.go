package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProviderRecordsSignInsAndLockouts(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewProvider(reg)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	p.RecordSignIn("credentials", OutcomeSuccess)
	p.RecordSignIn("credentials", OutcomeRateLimited)
	p.RecordSignIn("github", OutcomeSuccess)
	p.RecordLockout()

	if got := testutil.ToFloat64(p.signInCounter.WithLabelValues("credentials", OutcomeSuccess)); got != 1 {
		t.Fatalf("expected 1 credentials success, got %v", got)
	}
	if got := testutil.ToFloat64(p.signInCounter.WithLabelValues("credentials", OutcomeRateLimited)); got != 1 {
		t.Fatalf("expected 1 rate-limited attempt, got %v", got)
	}
	if got := testutil.ToFloat64(p.signInCounter.WithLabelValues("github", OutcomeSuccess)); got != 1 {
		t.Fatalf("expected 1 github success, got %v", got)
	}
	if got := testutil.ToFloat64(p.lockoutCounter); got != 1 {
		t.Fatalf("expected 1 lockout, got %v", got)
	}
}

func TestNewProviderAdoptsExistingCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewProvider(reg)
	if err != nil {
		t.Fatalf("first NewProvider: %v", err)
	}
	second, err := NewProvider(reg)
	if err != nil {
		t.Fatalf("second NewProvider: %v", err)
	}

	first.RecordLockout()
	second.RecordLockout()

	if got := testutil.ToFloat64(second.lockoutCounter); got != 2 {
		t.Fatalf("expected both providers to share one collector, got %v", got)
	}
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *Provider
	p.RecordSignIn("credentials", OutcomeSuccess)
	p.RecordLockout()
}
