package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SummaryOutput is what the generator produces for one event.
type SummaryOutput struct {
	SummaryMd   string   `json:"summaryMd"`
	ActionItems []string `json:"actionItems"`
	Confidence  float64  `json:"confidence"`
}

type Summary struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Date        string          `json:"date"` // YYYY-MM-DD, local to the user
	EventID     string          `json:"eventId"`
	Provider    Provider        `json:"provider"`
	Title       string          `json:"title"`
	StartsAt    time.Time       `json:"startsAt"`
	EndsAt      time.Time       `json:"endsAt"`
	Attendees   []Attendee      `json:"attendees"`
	Location    *string         `json:"location"`
	SourceBlob  json.RawMessage `json:"sourceBlob,omitempty"`
	SummaryMd   string          `json:"summaryMd"`
	ActionItems []string        `json:"actionItems"`
	Confidence  float64         `json:"confidence"`
	Finalized   bool            `json:"finalized"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (s *Summary) Output() SummaryOutput {
	items := s.ActionItems
	if items == nil {
		items = []string{}
	}
	return SummaryOutput{SummaryMd: s.SummaryMd, ActionItems: items, Confidence: s.Confidence}
}

type SummarizeRequest struct {
	Event      *NormalizedEvent `json:"event"`
	Regenerate bool             `json:"regenerate"`
}

type FinalizeRequest struct {
	Finalized *bool `json:"finalized"`
}

type RecapRequest struct {
	Date string `json:"date"`
}

type RecapResponse struct {
	Success bool     `json:"success"`
	SentTo  []string `json:"sentTo"`
	Preview string   `json:"preview"`
}
