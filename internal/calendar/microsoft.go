package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"daybrief-backend/internal/docs"
	"daybrief-backend/internal/models"
)

const DefaultGraphURL = "https://graph.microsoft.com/v1.0"

type MicrosoftClient struct {
	baseURL    string
	baseClient *http.Client
}

func NewMicrosoftClient(baseURL string, baseClient *http.Client) *MicrosoftClient {
	if baseURL == "" {
		baseURL = DefaultGraphURL
	}
	return &MicrosoftClient{baseURL: strings.TrimRight(baseURL, "/"), baseClient: baseClient}
}

type graphEmail struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// GraphEvent is the subset of a Graph calendarView event that is normalized.
type GraphEvent struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	BodyPreview string `json:"bodyPreview"`
	Body        *struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	Start     graphDateTime `json:"start"`
	End       graphDateTime `json:"end"`
	IsAllDay  bool          `json:"isAllDay"`
	Attendees []struct {
		EmailAddress graphEmail `json:"emailAddress"`
		Type         string     `json:"type"`
	} `json:"attendees"`
	Organizer *struct {
		EmailAddress graphEmail `json:"emailAddress"`
	} `json:"organizer"`
	Location *struct {
		DisplayName string `json:"displayName"`
	} `json:"location"`
	WebLink string `json:"webLink"`
}

type calendarViewResponse struct {
	Value []GraphEvent `json:"value"`
}

func (c *MicrosoftClient) httpClient(ctx context.Context, accessToken string) *http.Client {
	if c.baseClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.baseClient)
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))
}

func (c *MicrosoftClient) ListEvents(ctx context.Context, accessToken string, start, end time.Time) ([]models.NormalizedEvent, error) {
	params := url.Values{}
	params.Set("startDateTime", start.UTC().Format(time.RFC3339))
	params.Set("endDateTime", end.UTC().Format(time.RFC3339))
	params.Set("$orderby", "start/dateTime")
	params.Set("$top", fmt.Sprint(maxEvents))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me/calendarview?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient(ctx, accessToken).Do(req)
	if err != nil {
		return nil, fmt.Errorf("Microsoft Graph request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Provider: models.ProviderMicrosoft, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var data calendarViewResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode calendarview: %w", err)
	}

	events := make([]models.NormalizedEvent, 0, len(data.Value))
	for _, e := range data.Value {
		events = append(events, NormalizeMicrosoft(e))
	}
	return events, nil
}

// NormalizeMicrosoft maps a Graph event. All-day events follow the same
// date-only rule as Google events.
func NormalizeMicrosoft(e GraphEvent) models.NormalizedEvent {
	ev := models.NormalizedEvent{
		ID:        e.ID,
		Provider:  models.ProviderMicrosoft,
		Title:     titleOrDefault(e.Subject),
		StartsAt:  graphTime(e.Start, e.IsAllDay, dayStart),
		EndsAt:    graphTime(e.End, e.IsAllDay, dayEnd),
		Attendees: make([]models.Attendee, 0, len(e.Attendees)),
		HTMLLink:  e.WebLink,
	}
	if e.Body != nil && e.Body.Content != "" {
		ev.Description = e.Body.Content
	} else {
		ev.Description = e.BodyPreview
	}
	for _, a := range e.Attendees {
		ev.Attendees = append(ev.Attendees, models.Attendee{
			Name:     a.EmailAddress.Name,
			Email:    a.EmailAddress.Address,
			Required: a.Type == "required",
		})
	}
	if e.Organizer != nil {
		ev.Organizer = &models.Organizer{Name: e.Organizer.EmailAddress.Name, Email: e.Organizer.EmailAddress.Address}
	}
	if e.Location != nil {
		ev.Location = e.Location.DisplayName
	}
	ev.Attachments = docs.ExtractLinks(ev.Description, nil)
	return ev
}

// graphTime marks UTC wall-clock values with Z so they parse as instants.
func graphTime(t graphDateTime, allDay bool, clock string) string {
	if t.DateTime == "" {
		return ""
	}
	if allDay && len(t.DateTime) >= 10 {
		return t.DateTime[:10] + clock
	}
	if strings.EqualFold(t.TimeZone, "UTC") && !hasOffset(t.DateTime) {
		return t.DateTime + "Z"
	}
	return t.DateTime
}

func hasOffset(s string) bool {
	if strings.HasSuffix(s, "Z") {
		return true
	}
	if i := strings.LastIndex(s, "T"); i >= 0 {
		return strings.ContainsAny(s[i:], "+-")
	}
	return false
}
