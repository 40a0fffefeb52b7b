package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"daybrief-backend/internal/models"
)

const dateLayout = "2006-01-02"

const summaryColumns = `id, user_id, date, event_id, provider, title, starts_at, ends_at,
	attendees, location, source_blob, summary_md, action_items, confidence, finalized,
	created_at, updated_at`

type SummaryRepo struct {
	db DB
}

func NewSummaryRepo(db DB) *SummaryRepo {
	return &SummaryRepo{db: db}
}

func scanSummary(row pgx.Row) (*models.Summary, error) {
	var (
		s           models.Summary
		provider    string
		date        time.Time
		attendees   string
		sourceBlob  string
		actionItems string
	)
	err := row.Scan(
		&s.ID, &s.UserID, &date, &s.EventID, &provider, &s.Title, &s.StartsAt, &s.EndsAt,
		&attendees, &s.Location, &sourceBlob, &s.SummaryMd, &actionItems, &s.Confidence, &s.Finalized,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Provider = models.Provider(provider)
	s.Date = date.Format(dateLayout)
	if sourceBlob != "" {
		s.SourceBlob = json.RawMessage(sourceBlob)
	}
	if err := json.Unmarshal([]byte(attendees), &s.Attendees); err != nil {
		return nil, fmt.Errorf("summary %s attendees: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(actionItems), &s.ActionItems); err != nil {
		return nil, fmt.Errorf("summary %s action items: %w", s.ID, err)
	}
	if s.Attendees == nil {
		s.Attendees = []models.Attendee{}
	}
	if s.ActionItems == nil {
		s.ActionItems = []string{}
	}
	return &s, nil
}

// GetByIdentity finds the summary for one event on one local date.
func (r *SummaryRepo) GetByIdentity(ctx context.Context, userID uuid.UUID, eventID string, provider models.Provider, date string) (*models.Summary, error) {
	query := `SELECT ` + summaryColumns + ` FROM summaries
		WHERE user_id = $1 AND event_id = $2 AND provider = $3 AND date = $4`
	s, err := scanSummary(r.db.QueryRow(ctx, query, userID, eventID, string(provider), date))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *SummaryRepo) ListByUserDate(ctx context.Context, userID uuid.UUID, date string) ([]*models.Summary, error) {
	query := `SELECT ` + summaryColumns + ` FROM summaries
		WHERE user_id = $1 AND date = $2 ORDER BY starts_at ASC`
	rows, err := r.db.Query(ctx, query, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*models.Summary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Upsert inserts a new summary or, when (user, event, provider) already
// exists, replaces only its generated output. Identity, date and the
// finalized flag of an existing row are left as they are. Concurrent
// callers race and the last write wins.
func (r *SummaryRepo) Upsert(ctx context.Context, s *models.Summary) (created bool, err error) {
	attendees, err := json.Marshal(nonNilAttendees(s.Attendees))
	if err != nil {
		return false, err
	}
	actionItems, err := json.Marshal(nonNilStrings(s.ActionItems))
	if err != nil {
		return false, err
	}
	source := string(s.SourceBlob)
	if source == "" {
		source = "{}"
	}

	query := `INSERT INTO summaries (id, user_id, date, event_id, provider, title, starts_at, ends_at,
			attendees, location, source_blob, summary_md, action_items, confidence, finalized)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, FALSE)
		ON CONFLICT (user_id, event_id, provider) DO UPDATE SET
			summary_md = EXCLUDED.summary_md,
			action_items = EXCLUDED.action_items,
			confidence = EXCLUDED.confidence,
			updated_at = NOW()
		RETURNING id, date, finalized, created_at, updated_at, (xmax = 0) AS inserted`

	var date time.Time
	err = r.db.QueryRow(ctx, query,
		uuid.New(), s.UserID, s.Date, s.EventID, string(s.Provider), s.Title, s.StartsAt, s.EndsAt,
		string(attendees), s.Location, source, s.SummaryMd, string(actionItems), s.Confidence,
	).Scan(&s.ID, &date, &s.Finalized, &s.CreatedAt, &s.UpdatedAt, &created)
	if err != nil {
		return false, err
	}
	s.Date = date.Format(dateLayout)
	return created, nil
}

func (r *SummaryRepo) SetFinalized(ctx context.Context, userID, id uuid.UUID, finalized bool) (*models.Summary, error) {
	query := `UPDATE summaries SET finalized = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + summaryColumns
	s, err := scanSummary(r.db.QueryRow(ctx, query, id, userID, finalized))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func nonNilAttendees(a []models.Attendee) []models.Attendee {
	if a == nil {
		return []models.Attendee{}
	}
	return a
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
