package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"daybrief-backend/internal/middleware"
	"daybrief-backend/internal/models"
)

type summaryService interface {
	Summarize(ctx context.Context, userID uuid.UUID, event models.NormalizedEvent, regenerate bool) (*models.Summary, error)
	List(ctx context.Context, userID uuid.UUID, date string) ([]*models.Summary, error)
	SetFinalized(ctx context.Context, userID, id uuid.UUID, finalized bool) (*models.Summary, error)
}

type SummaryHandler struct {
	summaries summaryService
}

func NewSummaryHandler(summaries summaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

func (h *SummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if fields := validateEvent(req.Event); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid request data", fields, r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	summary, err := h.summaries.Summarize(r.Context(), userID, *req.Event, req.Regenerate)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary.Output())
}

// validateEvent checks the shape of a client-supplied event and normalises
// attachment type aliases in place.
func validateEvent(event *models.NormalizedEvent) map[string]string {
	if event == nil {
		return map[string]string{"event": "is required"}
	}

	fields := map[string]string{}
	if strings.TrimSpace(event.ID) == "" {
		fields["event.id"] = "is required"
	}
	if strings.TrimSpace(event.Title) == "" {
		fields["event.title"] = "is required"
	}
	if !event.Provider.Valid() {
		fields["event.provider"] = "must be google or microsoft"
	}
	if event.StartsAt == "" {
		fields["event.startsAt"] = "is required"
	}
	if event.EndsAt == "" {
		fields["event.endsAt"] = "is required"
	}
	if event.Attendees == nil {
		fields["event.attendees"] = "must be an array"
	}
	for i := range event.Attachments {
		a := &event.Attachments[i]
		if a.ID == "" {
			fields[fmt.Sprintf("event.attachments[%d].id", i)] = "is required"
		}
		t, ok := models.ParseAttachmentType(string(a.Type))
		if !ok {
			fields[fmt.Sprintf("event.attachments[%d].type", i)] = "must be doc, sheet, pdf or other"
			continue
		}
		a.Type = t
	}
	return fields
}

func (h *SummaryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	summaries, err := h.summaries.List(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if summaries == nil {
		summaries = []*models.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"summaries": summaries})
}

func (h *SummaryHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid summary ID", r))
		return
	}

	var req models.FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Finalized == nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid request data",
			map[string]string{"finalized": "is required"}, r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	summary, err := h.summaries.SetFinalized(r.Context(), userID, id, *req.Finalized)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
