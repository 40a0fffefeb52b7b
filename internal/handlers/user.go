package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"daybrief-backend/internal/middleware"
	"daybrief-backend/internal/models"
)

type userService interface {
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, req models.UpdateSettingsRequest) (*models.User, error)
	DeleteData(ctx context.Context, userID uuid.UUID) error
}

type UserHandler struct {
	users userService
}

func NewUserHandler(users userService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid settings data", r))
		return
	}

	user, err := h.users.UpdateSettings(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// DeleteData erases everything stored for the caller and ends all sessions.
func (h *UserHandler) DeleteData(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteData(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
