package calendar

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
	gcal "google.golang.org/api/calendar/v3"
	docsapi "google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"

	"daybrief-backend/internal/models"
)

var microsoftScopes = []string{"openid", "email", "profile", "offline_access", "Calendars.Read", "User.Read"}

func GoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			"openid", "email", "profile",
			gcal.CalendarReadonlyScope,
			docsapi.DocumentsReadonlyScope,
			drive.DriveReadonlyScope,
		},
	}
}

func MicrosoftOAuthConfig(clientID, clientSecret, tenant, redirectURL string) *oauth2.Config {
	if tenant == "" {
		tenant = "common"
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     microsoft.AzureADEndpoint(tenant),
		Scopes:       microsoftScopes,
	}
}

// Refresher trades a stored refresh token for a new access token.
type Refresher struct {
	configs map[models.Provider]*oauth2.Config
}

func NewRefresher(configs map[models.Provider]*oauth2.Config) *Refresher {
	return &Refresher{configs: configs}
}

func (r *Refresher) Refresh(ctx context.Context, provider models.Provider, refreshToken string) (*oauth2.Token, error) {
	cfg, ok := r.configs[provider]
	if !ok || cfg == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token for %s", provider)
	}
	tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh %s token: %w", provider, err)
	}
	return tok, nil
}
