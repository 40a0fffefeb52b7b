package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"daybrief-backend/internal/metrics"
	"daybrief-backend/internal/models"
	"daybrief-backend/internal/prompt"
	"daybrief-backend/internal/repository"
)

type docEnricher interface {
	CheckAccess(ctx context.Context, accessToken string) bool
	Enrich(ctx context.Context, accessToken string, attachments []models.DocumentAttachment)
}

type summaryGenerator interface {
	Generate(ctx context.Context, prompt string) (models.SummaryOutput, error)
}

// SummaryService produces and stores one summary per (user, event, provider).
type SummaryService struct {
	users     userStore
	accounts  accountStore
	summaries summaryStore
	docs      docEnricher
	generator summaryGenerator
	publisher Publisher
}

func NewSummaryService(users userStore, accounts accountStore, summaries summaryStore, docs docEnricher, generator summaryGenerator, publisher Publisher) *SummaryService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &SummaryService{
		users:     users,
		accounts:  accounts,
		summaries: summaries,
		docs:      docs,
		generator: generator,
		publisher: publisher,
	}
}

// Summarize returns the stored summary when it is finalized and regenerate
// is false. Otherwise it generates a fresh one and upserts it; only the
// generated fields of an existing record are replaced.
func (s *SummaryService) Summarize(ctx context.Context, userID uuid.UUID, event models.NormalizedEvent, regenerate bool) (*models.Summary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}

	loc := models.LoadLocation(user.Timezone)
	startsAt, err := models.ParseEventTime(event.StartsAt, loc)
	if err != nil {
		return nil, &ValidationError{Message: "Invalid request data", Fields: map[string]string{"event.startsAt": "Invalid timestamp"}}
	}
	endsAt, err := models.ParseEventTime(event.EndsAt, loc)
	if err != nil {
		return nil, &ValidationError{Message: "Invalid request data", Fields: map[string]string{"event.endsAt": "Invalid timestamp"}}
	}
	if endsAt.Before(startsAt) {
		return nil, &ValidationError{Message: "Invalid request data", Fields: map[string]string{"event.endsAt": "must not be before startsAt"}}
	}
	date := startsAt.In(loc).Format("2006-01-02")

	existing, err := s.summaries.GetByIdentity(ctx, userID, event.ID, event.Provider, date)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Finalized && !regenerate {
		metrics.Summaries.WithLabelValues("hit").Inc()
		return existing, nil
	}

	if len(event.Attachments) > 0 {
		s.enrichDocuments(ctx, userID, event.Attachments)
	}

	out, err := s.generator.Generate(ctx, prompt.BuildSummary(event, user.Timezone))
	if err != nil {
		return nil, &UpstreamError{Service: "llm", Message: "Failed to generate summary", Err: err}
	}

	source, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	var location *string
	if event.Location != "" {
		location = &event.Location
	}

	summary := &models.Summary{
		UserID:      userID,
		Date:        date,
		EventID:     event.ID,
		Provider:    event.Provider,
		Title:       event.Title,
		StartsAt:    startsAt.UTC(),
		EndsAt:      endsAt.UTC(),
		Attendees:   event.Attendees,
		Location:    location,
		SourceBlob:  source,
		SummaryMd:   out.SummaryMd,
		ActionItems: out.ActionItems,
		Confidence:  out.Confidence,
	}
	created, err := s.summaries.Upsert(ctx, summary)
	if err != nil {
		return nil, err
	}
	if created {
		metrics.Summaries.WithLabelValues("created").Inc()
	} else {
		metrics.Summaries.WithLabelValues("updated").Inc()
	}

	s.publisher.Publish(ctx, userID, models.WSMessage{
		Type: models.WSSummaryReady,
		Payload: models.SummaryReadyEvent{
			SummaryID: summary.ID,
			EventID:   summary.EventID,
			Provider:  summary.Provider,
			Date:      summary.Date,
		},
	})
	return summary, nil
}

// enrichDocuments fills doc attachment content using the user's Google token.
// Nothing here fails the summary.
func (s *SummaryService) enrichDocuments(ctx context.Context, userID uuid.UUID, attachments []models.DocumentAttachment) {
	if s.docs == nil {
		return
	}
	account, err := s.accounts.GetByUser(ctx, userID)
	if err != nil || account == nil || account.Provider != models.ProviderGoogle || account.AccessToken == "" {
		log.Printf("⚠ no Google access token for user %s, skipping %d attachment(s)", userID, len(attachments))
		return
	}
	if !s.docs.CheckAccess(ctx, account.AccessToken) {
		log.Printf("⚠ Drive access probe failed for user %s", userID)
	}
	s.docs.Enrich(ctx, account.AccessToken, attachments)
}

// List returns the stored summaries of a local date ordered by start time.
func (s *SummaryService) List(ctx context.Context, userID uuid.UUID, date string) ([]*models.Summary, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &ValidationError{
			Message: "Invalid date",
			Fields:  map[string]string{"date": "Date must be in YYYY-MM-DD format"},
		}
	}
	return s.summaries.ListByUserDate(ctx, userID, date)
}

// SetFinalized locks or unlocks a summary against regeneration.
func (s *SummaryService) SetFinalized(ctx context.Context, userID, id uuid.UUID, finalized bool) (*models.Summary, error) {
	summary, err := s.summaries.SetFinalized(ctx, userID, id, finalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "Summary not found"}
		}
		return nil, err
	}
	return summary, nil
}
