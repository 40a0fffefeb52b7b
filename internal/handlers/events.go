package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"daybrief-backend/internal/middleware"
	"daybrief-backend/internal/models"
	"daybrief-backend/internal/services"
)

type eventLister interface {
	ListEvents(ctx context.Context, userID uuid.UUID, date string) ([]models.NormalizedEvent, error)
}

type EventHandler struct {
	events eventLister
}

func NewEventHandler(events eventLister) *EventHandler {
	return &EventHandler{events: events}
}

// List returns the user's events for ?date= (today in their timezone when
// omitted).
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	events, err := h.events.ListEvents(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			log.Printf("✗ calendar fetch for %s: %v", userID, err)
			resp := errorResp("CALENDAR_ERROR", "Failed to fetch calendar events", r)
			resp.Error.Details = upstream.Error()
			writeJSON(w, http.StatusInternalServerError, resp)
			return
		}
		handleServiceError(w, r, err)
		return
	}

	if events == nil {
		events = []models.NormalizedEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}
