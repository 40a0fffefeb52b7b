package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"daybrief-backend/internal/middleware"
	"daybrief-backend/internal/models"
	"daybrief-backend/internal/recap"
	"daybrief-backend/internal/services"
)

type recapSender interface {
	Send(ctx context.Context, userID uuid.UUID, date string) (*services.RecapResult, error)
}

type RecapHandler struct {
	recaps recapSender
}

func NewRecapHandler(recaps recapSender) *RecapHandler {
	return &RecapHandler{recaps: recaps}
}

// Send delivers the recap for {date} now. An empty body means today.
func (h *RecapHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.RecapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.recaps.Send(r.Context(), userID, req.Date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sentTo := result.SentTo
	if sentTo == nil {
		sentTo = []string{}
	}
	writeJSON(w, http.StatusOK, models.RecapResponse{
		Success: true,
		SentTo:  sentTo,
		Preview: recap.Preview(result.Content),
	})
}
