package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"daybrief-backend/internal/middleware"
	"daybrief-backend/internal/models"
	"daybrief-backend/internal/services"
)

type authService interface {
	AuthURL(ctx context.Context, provider models.Provider) (string, error)
	HandleCallback(ctx context.Context, provider models.Provider, state, code string) (*models.AuthTokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
}

type AuthHandler struct {
	authService authService
	frontendURL string
}

func NewAuthHandler(authService authService, frontendURL string) *AuthHandler {
	return &AuthHandler{authService: authService, frontendURL: frontendURL}
}

// Login redirects the browser to the provider's consent screen.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	provider, err := models.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unsupported provider", r))
		return
	}

	authURL, err := h.authService.AuthURL(r.Context(), provider)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback finishes the OAuth dance and hands the session tokens to the
// frontend in the URL fragment so they never reach server logs.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider, err := models.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		h.redirectWithError(w, r, "unsupported_provider")
		return
	}

	q := r.URL.Query()
	if denied := q.Get("error"); denied != "" {
		h.redirectWithError(w, r, denied)
		return
	}
	if q.Get("code") == "" || q.Get("state") == "" {
		h.redirectWithError(w, r, "invalid_request")
		return
	}

	tokens, err := h.authService.HandleCallback(r.Context(), provider, q.Get("state"), q.Get("code"))
	if err != nil {
		log.Printf("✗ OAuth callback for %s failed: %v", provider, err)
		h.redirectWithError(w, r, "signin_failed")
		return
	}

	fragment := url.Values{}
	fragment.Set("access_token", tokens.AccessToken)
	fragment.Set("refresh_token", tokens.RefreshToken)
	http.Redirect(w, r, h.frontendURL+"/auth/callback#"+fragment.Encode(), http.StatusFound)
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	fragment := url.Values{}
	fragment.Set("error", code)
	http.Redirect(w, r, h.frontendURL+"/auth/callback#"+fragment.Encode(), http.StatusFound)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	tokens, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		log.Printf("⚠ logout: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetRequestID(r.Context()),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	resp := errorResp(code, message, r)
	resp.Error.Fields = fields
	return resp
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation   *services.ValidationError
		conflict     *services.ConflictError
		notFound     *services.NotFoundError
		unauthorized *services.UnauthorizedError
		forbidden    *services.ForbiddenError
		rateLimited  *services.RateLimitError
		upstream     *services.UpstreamError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", validation.Error(), validation.Fields, r))
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", conflict.Message, r))
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFound.Message, r))
	case errors.As(err, &unauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", unauthorized.Message, r))
	case errors.As(err, &forbidden):
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", forbidden.Message, r))
	case errors.As(err, &rateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", rateLimited.Message, r))
	case errors.As(err, &upstream):
		log.Printf("✗ %s %s: %v", r.Method, r.URL.Path, err)
		resp := errorResp("UPSTREAM_ERROR", "A downstream service failed", r)
		resp.Error.Details = upstream.Error()
		writeJSON(w, http.StatusBadGateway, resp)
	default:
		log.Printf("✗ %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
