package provider

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/pukpuklouis/auth-service/internal/core/domain"
	"github.com/pukpuklouis/auth-service/internal/infra/config"
)

const twitterUserInfoURL = "https://api.twitter.com/2/users/me?user.fields=profile_image_url"

// twitterEndpoint is the v2 OAuth endpoint pair. Twitter wants client
// credentials in the Authorization header during the code exchange.
var twitterEndpoint = oauth2.Endpoint{
	AuthURL:   "https://twitter.com/i/oauth2/authorize",
	TokenURL:  "https://api.twitter.com/2/oauth2/token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// twitterProfile is the v2 API response. Fields live under a data envelope
// and the API exposes no email address.
type twitterProfile struct {
	Data struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Username        string `json:"username"`
		ProfileImageURL string `json:"profile_image_url"`
	} `json:"data"`
}

func normalizeTwitterProfile(raw twitterProfile) domain.NormalizedProfile {
	name := raw.Data.Name
	if name == "" {
		name = raw.Data.Username
	}

	profile := domain.NormalizedProfile{
		ID:   raw.Data.ID,
		Name: name,
	}
	if url := raw.Data.ProfileImageURL; url != "" {
		// The API hands out the 48x48 thumbnail; strip the size suffix to
		// get the original upload.
		full := strings.Replace(url, "_normal", "", 1)
		profile.Image = &full
	}
	return profile
}

func newTwitter(creds config.ProviderCredentials, callbackBase string) *Provider {
	p := &Provider{
		name: "twitter",
		oauth: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  callbackURL(callbackBase, "twitter"),
			Endpoint:     twitterEndpoint,
			Scopes:       []string{"users.read", "tweet.read"},
		},
	}
	p.profile = func(ctx context.Context, client *http.Client) (domain.NormalizedProfile, error) {
		var raw twitterProfile
		if err := fetchJSON(ctx, client, twitterUserInfoURL, &raw); err != nil {
			return domain.NormalizedProfile{}, err
		}
		return normalizeTwitterProfile(raw), nil
	}
	return p
}
