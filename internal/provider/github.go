package provider

import (
	"context"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/infra/config"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

type githubProfile struct {
	ID        int64   `json:"id"`
	Login     string  `json:"login"`
	Name      *string `json:"name"`
	AvatarURL string  `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// pickGitHubEmail selects the primary verified address when present, else
// any verified address, else nil. The profile endpoint hides email for
// users who keep it private, so the emails endpoint is authoritative.
func pickGitHubEmail(emails []githubEmail) *string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			email := e.Email
			return &email
		}
	}
	for _, e := range emails {
		if e.Verified {
			email := e.Email
			return &email
		}
	}
	return nil
}

func normalizeGitHubProfile(raw githubProfile, email *string) domain.NormalizedProfile {
	name := raw.Login
	if raw.Name != nil && *raw.Name != "" {
		name = *raw.Name
	}

	verified := email != nil

	profile := domain.NormalizedProfile{
		ID:            strconv.FormatInt(raw.ID, 10),
		Name:          name,
		Email:         email,
		EmailVerified: &verified,
	}
	if raw.AvatarURL != "" {
		profile.Image = &raw.AvatarURL
	}
	return profile
}

func newGitHub(creds config.ProviderCredentials, callbackBase string) *Provider {
	p := &Provider{
		name: "github",
		oauth: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  callbackURL(callbackBase, "github"),
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
	}
	p.profile = func(ctx context.Context, client *http.Client) (domain.NormalizedProfile, error) {
		var raw githubProfile
		if err := fetchJSON(ctx, client, githubUserURL, &raw); err != nil {
			return domain.NormalizedProfile{}, err
		}

		var emails []githubEmail
		if err := fetchJSON(ctx, client, githubEmailsURL, &emails); err != nil {
			return domain.NormalizedProfile{}, err
		}

		return normalizeGitHubProfile(raw, pickGitHubEmail(emails)), nil
	}
	return p
}
