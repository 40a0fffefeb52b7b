package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	JobTypeRecapDelivery = "recap-delivery"

	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

type Job struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         string          `json:"type"`
	ConfigJSON   json.RawMessage `json:"config"`
	Status       string          `json:"status"` // "pending" | "processing" | "completed" | "failed"
	RetryCount   int             `json:"retry_count"`
	MaxRetries   int             `json:"max_retries"`
	ErrorMessage *string         `json:"error_message"`
	Result       json.RawMessage `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
}

// RecapJobConfig is the payload of a recap-delivery job.
type RecapJobConfig struct {
	Date string `json:"date"`
}

// WebSocket message types
const (
	WSSummaryReady = "summary.ready"
	WSRecapSent    = "recap.sent"
	WSRecapFailed  = "recap.failed"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type SummaryReadyEvent struct {
	SummaryID uuid.UUID `json:"summary_id"`
	EventID   string    `json:"event_id"`
	Provider  Provider  `json:"provider"`
	Date      string    `json:"date"`
}

type RecapSentEvent struct {
	JobID  *uuid.UUID `json:"job_id,omitempty"`
	Date   string     `json:"date"`
	SentTo []string   `json:"sent_to"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   string            `json:"details,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
