package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompleter_SendsRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"summaryMd\":\"- a\",\"actionItems\":[],\"confidence\":0.7}"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter(srv.URL+"/v1/", "sk-test", "", nil)
	text, err := c.Complete(context.Background(), "sys", "user prompt")
	require.NoError(t, err)
	assert.Contains(t, text, "summaryMd")

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 0.1, got.Temperature)
	assert.Equal(t, 1000, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "user prompt"}, got.Messages[1])
}

func TestOpenAICompleter_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	_, err := NewOpenAICompleter(srv.URL, "k", "m", nil).Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Equal(t, "LLM API error: 429 rate limited", err.Error())
}

func TestOpenAICompleter_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAICompleter(srv.URL, "k", "m", nil).Complete(context.Background(), "s", "u")
	assert.True(t, errors.Is(err, ErrNoContent))
}
