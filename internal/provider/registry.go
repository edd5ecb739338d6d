package provider

import (
	"fmt"
	"sort"

	"github.com/pukpuklouis/auth-service/internal/infra/config"
)

// Registry holds the providers enabled by configuration.
type Registry struct {
	providers map[string]*Provider
}

// FromConfig builds the registry from configured credentials. A provider is
// enabled only when both its client id and secret are set.
func FromConfig(cfg config.ProviderSettings) *Registry {
	providers := make(map[string]*Provider)

	if cfg.Google.Enabled() {
		providers["google"] = newGoogle(cfg.Google, cfg.CallbackBaseURL)
	}
	if cfg.GitHub.Enabled() {
		providers["github"] = newGitHub(cfg.GitHub, cfg.CallbackBaseURL)
	}
	if cfg.Facebook.Enabled() {
		providers["facebook"] = newFacebook(cfg.Facebook, cfg.CallbackBaseURL)
	}
	if cfg.Twitter.Enabled() {
		providers["twitter"] = newTwitter(cfg.Twitter, cfg.CallbackBaseURL)
	}

	return &Registry{providers: providers}
}

// Get returns the provider by name.
func (r *Registry) Get(name string) (*Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q is not configured", name)
	}
	return p, nil
}

// Names returns the enabled provider names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
