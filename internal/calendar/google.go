package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"daybrief-backend/internal/docs"
	"daybrief-backend/internal/models"
)

type GoogleClient struct {
	endpoint   string
	baseClient *http.Client
}

// NewGoogleClient reads the primary calendar. An empty endpoint uses the
// public Calendar API.
func NewGoogleClient(endpoint string, baseClient *http.Client) *GoogleClient {
	return &GoogleClient{endpoint: endpoint, baseClient: baseClient}
}

func (c *GoogleClient) ListEvents(ctx context.Context, accessToken string, start, end time.Time) ([]models.NormalizedEvent, error) {
	svc, err := gcal.NewService(ctx, tokenClientOptions(ctx, c.baseClient, accessToken, c.endpoint)...)
	if err != nil {
		return nil, fmt.Errorf("calendar client: %w", err)
	}

	resp, err := svc.Events.List("primary").
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxEvents).
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			body := gerr.Message
			if body == "" {
				body = gerr.Body
			}
			return nil, &APIError{Provider: models.ProviderGoogle, StatusCode: gerr.Code, Body: body}
		}
		return nil, fmt.Errorf("Google Calendar request failed: %w", err)
	}

	events := make([]models.NormalizedEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, NormalizeGoogle(item))
	}
	return events, nil
}

// NormalizeGoogle maps a Calendar v3 event. Date-only (all-day) boundaries
// become T00:00:00 and T23:59:59 of their own dates.
func NormalizeGoogle(e *gcal.Event) models.NormalizedEvent {
	ev := models.NormalizedEvent{
		ID:          e.Id,
		Provider:    models.ProviderGoogle,
		Title:       titleOrDefault(e.Summary),
		Description: e.Description,
		Attendees:   make([]models.Attendee, 0, len(e.Attendees)),
		Location:    e.Location,
		HTMLLink:    e.HtmlLink,
	}
	if e.Start != nil {
		ev.StartsAt = googleTime(e.Start, dayStart)
	}
	if e.End != nil {
		ev.EndsAt = googleTime(e.End, dayEnd)
	}
	for _, a := range e.Attendees {
		if a == nil {
			continue
		}
		ev.Attendees = append(ev.Attendees, models.Attendee{
			Name:     a.DisplayName,
			Email:    a.Email,
			Required: !a.Optional,
		})
	}
	if e.Organizer != nil {
		ev.Organizer = &models.Organizer{Name: e.Organizer.DisplayName, Email: e.Organizer.Email}
	}

	var atts []docs.ProviderAttachment
	for _, a := range e.Attachments {
		if a == nil {
			continue
		}
		atts = append(atts, docs.ProviderAttachment{FileID: a.FileId, Title: a.Title, MimeType: a.MimeType, FileURL: a.FileUrl})
	}
	ev.Attachments = docs.ExtractLinks(e.Description, atts)
	return ev
}

func googleTime(t *gcal.EventDateTime, clock string) string {
	if t.DateTime != "" {
		return t.DateTime
	}
	if t.Date != "" {
		return t.Date + clock
	}
	return ""
}

func tokenClientOptions(ctx context.Context, base *http.Client, accessToken, endpoint string) []option.ClientOption {
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts
}
