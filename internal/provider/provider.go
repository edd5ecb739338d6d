// Package provider defines the OAuth providers the service can federate
// with. Each provider carries its oauth2 endpoints, the scopes it requests,
// and a typed mapping from its raw profile shape to the normalized profile
// the rest of the service consumes.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
)

// Provider is one configured OAuth identity provider.
type Provider struct {
	name    string
	oauth   *oauth2.Config
	profile func(ctx context.Context, client *http.Client) (domain.NormalizedProfile, error)
}

// Name returns the provider identifier used in routes and account rows.
func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL builds the authorization redirect URL for the given state.
func (p *Provider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.oauth.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for a token.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code with %s: %w", p.name, err)
	}
	return token, nil
}

// Profile fetches the user profile with the given token and normalizes it.
func (p *Provider) Profile(ctx context.Context, token *oauth2.Token) (domain.NormalizedProfile, error) {
	client := p.oauth.Client(ctx, token)
	return p.profile(ctx, client)
}

func callbackURL(base, name string) string {
	return fmt.Sprintf("%s/auth/callback/%s", base, name)
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fetch %s: unexpected status %d: %s", url, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", url, err)
	}

	return nil
}
