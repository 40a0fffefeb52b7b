package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybrief-backend/internal/models"
)

func TestProfileFetcher_Google(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer g-token", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Path, "userinfo")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"123","email":"ada@example.com","name":"Ada","picture":"https://img/a.png"}`))
	}))
	defer srv.Close()

	f := NewProfileFetcher(srv.Client(), srv.URL+"/", "")
	p, err := f.Fetch(context.Background(), models.ProviderGoogle, "g-token")
	require.NoError(t, err)
	assert.Equal(t, &Profile{ID: "123", Email: "ada@example.com", Name: "Ada", Picture: "https://img/a.png"}, p)
}

func TestProfileFetcher_MicrosoftFallsBackToUPN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"m-1","displayName":"Grace","mail":null,"userPrincipalName":"grace@contoso.com"}`))
	}))
	defer srv.Close()

	f := NewProfileFetcher(srv.Client(), "", srv.URL)
	p, err := f.Fetch(context.Background(), models.ProviderMicrosoft, "m-token")
	require.NoError(t, err)
	assert.Equal(t, "grace@contoso.com", p.Email)
	assert.Equal(t, "m-1", p.ID)
}

func TestProfileFetcher_MicrosoftError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := NewProfileFetcher(srv.Client(), "", srv.URL)
	_, err := f.Fetch(context.Background(), models.ProviderMicrosoft, "bad")
	assert.True(t, IsUnauthorized(err))
}
