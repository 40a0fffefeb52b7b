package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	oauth2api "google.golang.org/api/oauth2/v2"

	"daybrief-backend/internal/models"
)

// Profile is the signed-in identity returned by a provider.
type Profile struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// ProfileFetcher reads the account profile behind an access token.
type ProfileFetcher struct {
	baseClient     *http.Client
	googleEndpoint string
	graph          *MicrosoftClient
}

func NewProfileFetcher(baseClient *http.Client, googleEndpoint, graphURL string) *ProfileFetcher {
	return &ProfileFetcher{
		baseClient:     baseClient,
		googleEndpoint: googleEndpoint,
		graph:          NewMicrosoftClient(graphURL, baseClient),
	}
}

func (f *ProfileFetcher) Fetch(ctx context.Context, provider models.Provider, accessToken string) (*Profile, error) {
	switch provider {
	case models.ProviderGoogle:
		return f.google(ctx, accessToken)
	case models.ProviderMicrosoft:
		return f.microsoft(ctx, accessToken)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
}

func (f *ProfileFetcher) google(ctx context.Context, accessToken string) (*Profile, error) {
	svc, err := oauth2api.NewService(ctx, tokenClientOptions(ctx, f.baseClient, accessToken, f.googleEndpoint)...)
	if err != nil {
		return nil, fmt.Errorf("create oauth2 service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	return &Profile{ID: info.Id, Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}

type graphUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

func (f *ProfileFetcher) microsoft(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.graph.baseURL+"/me", nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.graph.httpClient(ctx, accessToken).Do(req)
	if err != nil {
		return nil, fmt.Errorf("Microsoft Graph request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Provider: models.ProviderMicrosoft, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var u graphUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode graph user: %w", err)
	}
	email := u.Mail
	if email == "" {
		email = u.UserPrincipalName
	}
	return &Profile{ID: u.ID, Email: email, Name: u.DisplayName}, nil
}
