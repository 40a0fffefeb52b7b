package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"daybrief-backend/internal/models"
)

func TestDayWindow(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name      string
		date      string
		loc       *time.Location
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{"utc", "2024-01-15", time.UTC, "2024-01-15T00:00:00Z", "2024-01-15T23:59:59Z", false},
		{"new york winter", "2024-01-15", ny, "2024-01-15T05:00:00Z", "2024-01-16T04:59:59Z", false},
		{"nil location", "2024-07-01", nil, "2024-07-01T00:00:00Z", "2024-07-01T23:59:59Z", false},
		{"bad format", "15/01/2024", time.UTC, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := DayWindow(tt.date, tt.loc)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start.Format(time.RFC3339))
			assert.Equal(t, tt.wantEnd, end.Format(time.RFC3339))
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	assert.False(t, IsUnauthorized(nil))
	assert.True(t, IsUnauthorized(&APIError{Provider: models.ProviderGoogle, StatusCode: 401}))
	assert.False(t, IsUnauthorized(&APIError{Provider: models.ProviderGoogle, StatusCode: 500, Body: "oops"}))
	assert.True(t, IsUnauthorized(fmt.Errorf("wrapped: %w", &APIError{StatusCode: 401})))
	assert.True(t, IsUnauthorized(errors.New("upstream said 401 Unauthorized")))
	assert.False(t, IsUnauthorized(errors.New("timeout")))
}

func TestRegistry(t *testing.T) {
	g := NewGoogleClient("", nil)
	m := NewMicrosoftClient("", nil)
	r := NewRegistry(g, m)

	c, err := r.Client(models.ProviderGoogle)
	require.NoError(t, err)
	assert.Same(t, g, c)

	c, err = r.Client(models.ProviderMicrosoft)
	require.NoError(t, err)
	assert.Same(t, m, c)

	_, err = r.Client(models.Provider("yahoo"))
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestRefresher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		if r.PostForm.Get("refresh_token") != "good-refresh" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	cfg := &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams},
	}
	r := NewRefresher(map[models.Provider]*oauth2.Config{models.ProviderGoogle: cfg})

	tok, err := r.Refresh(context.Background(), models.ProviderGoogle, "good-refresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	_, err = r.Refresh(context.Background(), models.ProviderGoogle, "revoked")
	assert.Error(t, err)

	_, err = r.Refresh(context.Background(), models.ProviderMicrosoft, "good-refresh")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}
