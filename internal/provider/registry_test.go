package provider

import (
	"strings"
	"testing"

	"github.com/pukpuklouis/auth-service/internal/infra/config"
)

func TestFromConfigEnablesOnlyCompleteCredentialPairs(t *testing.T) {
	cfg := config.ProviderSettings{
		CallbackBaseURL: "https://auth.example.com",
		Google:          config.ProviderCredentials{ClientID: "id", ClientSecret: "secret"},
		GitHub:          config.ProviderCredentials{ClientID: "id"}, // secret missing
		Facebook:        config.ProviderCredentials{ClientSecret: "secret"},
		Twitter:         config.ProviderCredentials{},
	}

	registry := FromConfig(cfg)

	names := registry.Names()
	if len(names) != 1 || names[0] != "google" {
		t.Fatalf("expected only google enabled, got %v", names)
	}

	if _, err := registry.Get("github"); err == nil {
		t.Fatal("partially configured provider must be absent")
	}
}

func TestProviderAuthCodeURL(t *testing.T) {
	cfg := config.ProviderSettings{
		CallbackBaseURL: "https://auth.example.com",
		GitHub:          config.ProviderCredentials{ClientID: "client-id", ClientSecret: "secret"},
	}

	registry := FromConfig(cfg)
	p, err := registry.Get("github")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	url := p.AuthCodeURL("state-token")
	if !strings.Contains(url, "client_id=client-id") {
		t.Fatalf("expected client id in url, got %s", url)
	}
	if !strings.Contains(url, "state=state-token") {
		t.Fatalf("expected state in url, got %s", url)
	}
	if !strings.Contains(url, "redirect_uri=") {
		t.Fatalf("expected redirect uri in url, got %s", url)
	}
}

func TestTwitterUsesV2AuthorizationEndpoint(t *testing.T) {
	cfg := config.ProviderSettings{
		CallbackBaseURL: "https://auth.example.com",
		Twitter:         config.ProviderCredentials{ClientID: "client-id", ClientSecret: "secret"},
	}

	p, err := FromConfig(cfg).Get("twitter")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	url := p.AuthCodeURL("state-token")
	if !strings.Contains(url, "twitter.com/i/oauth2/authorize") {
		t.Fatalf("expected v2 authorize endpoint, got %s", url)
	}
	if !strings.Contains(url, "scope=users.read+tweet.read") {
		t.Fatalf("expected read scopes, got %s", url)
	}
}

func TestRegistryNamesStableOrder(t *testing.T) {
	cfg := config.ProviderSettings{
		CallbackBaseURL: "https://auth.example.com",
		Google:          config.ProviderCredentials{ClientID: "a", ClientSecret: "b"},
		GitHub:          config.ProviderCredentials{ClientID: "a", ClientSecret: "b"},
		Facebook:        config.ProviderCredentials{ClientID: "a", ClientSecret: "b"},
		Twitter:         config.ProviderCredentials{ClientID: "a", ClientSecret: "b"},
	}

	names := FromConfig(cfg).Names()
	want := []string{"facebook", "github", "google", "twitter"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}
