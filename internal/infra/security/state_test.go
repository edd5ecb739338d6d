package security

import (
	"testing"
	"time"
)

func TestOAuthStateRoundTrip(t *testing.T) {
	state, err := SignOAuthState("secret", "github", time.Minute)
	if err != nil {
		t.Fatalf("SignOAuthState: %v", err)
	}

	provider, err := VerifyOAuthState("secret", state)
	if err != nil {
		t.Fatalf("VerifyOAuthState: %v", err)
	}
	if provider != "github" {
		t.Fatalf("expected provider github, got %q", provider)
	}
}

func TestOAuthStateWrongSecret(t *testing.T) {
	state, err := SignOAuthState("secret", "google", time.Minute)
	if err != nil {
		t.Fatalf("SignOAuthState: %v", err)
	}

	if _, err := VerifyOAuthState("other-secret", state); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestOAuthStateExpired(t *testing.T) {
	state, err := SignOAuthState("secret", "google", -time.Minute)
	if err != nil {
		t.Fatalf("SignOAuthState: %v", err)
	}

	if _, err := VerifyOAuthState("secret", state); err == nil {
		t.Fatal("expected verification failure for expired state")
	}
}

func TestOAuthStateGarbage(t *testing.T) {
	if _, err := VerifyOAuthState("secret", "not-a-jwt"); err == nil {
		t.Fatal("expected verification failure for malformed state")
	}
}

func TestSignOAuthStateRequiresSecret(t *testing.T) {
	if _, err := SignOAuthState("", "google", time.Minute); err == nil {
		t.Fatal("expected error when signing without a secret")
	}
}
