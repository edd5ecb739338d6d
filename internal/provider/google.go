package provider

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/infra/config"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

type googleProfile struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture"`
}

func normalizeGoogleProfile(raw googleProfile) domain.NormalizedProfile {
	profile := domain.NormalizedProfile{
		ID:            raw.Sub,
		Name:          raw.Name,
		EmailVerified: &raw.EmailVerified,
	}
	if raw.Email != "" {
		profile.Email = &raw.Email
	}
	if raw.Picture != "" {
		profile.Image = &raw.Picture
	}
	return profile
}

func newGoogle(creds config.ProviderCredentials, callbackBase string) *Provider {
	p := &Provider{
		name: "google",
		oauth: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  callbackURL(callbackBase, "google"),
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
	p.profile = func(ctx context.Context, client *http.Client) (domain.NormalizedProfile, error) {
		var raw googleProfile
		if err := fetchJSON(ctx, client, googleUserInfoURL, &raw); err != nil {
			return domain.NormalizedProfile{}, err
		}
		return normalizeGoogleProfile(raw), nil
	}
	return p
}
