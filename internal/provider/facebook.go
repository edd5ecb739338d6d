package provider

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/infra/config"
)

const facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email,picture"

type facebookProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func normalizeFacebookProfile(raw facebookProfile) domain.NormalizedProfile {
	// Facebook only returns addresses it has confirmed.
	verified := true

	profile := domain.NormalizedProfile{
		ID:            raw.ID,
		Name:          raw.Name,
		EmailVerified: &verified,
	}
	if raw.Email != "" {
		profile.Email = &raw.Email
	}
	if url := raw.Picture.Data.URL; url != "" {
		profile.Image = &url
	}
	return profile
}

func newFacebook(creds config.ProviderCredentials, callbackBase string) *Provider {
	p := &Provider{
		name: "facebook",
		oauth: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  callbackURL(callbackBase, "facebook"),
			Endpoint:     facebook.Endpoint,
			Scopes:       []string{"email", "public_profile"},
		},
	}
	p.profile = func(ctx context.Context, client *http.Client) (domain.NormalizedProfile, error) {
		var raw facebookProfile
		if err := fetchJSON(ctx, client, facebookUserInfoURL, &raw); err != nil {
			return domain.NormalizedProfile{}, err
		}
		return normalizeFacebookProfile(raw), nil
	}
	return p
}
