// Package calendar reads a single local day of events from the supported
// providers and normalizes them into models.NormalizedEvent.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daybrief-backend/internal/models"
)

const (
	maxEvents     = 50
	untitledEvent = "Untitled Event"
	dayStart      = "T00:00:00"
	dayEnd        = "T23:59:59"
)

var ErrUnsupportedProvider = errors.New("unsupported calendar provider")

// Client lists the events between start and end for the token's owner,
// ordered by start time.
type Client interface {
	ListEvents(ctx context.Context, accessToken string, start, end time.Time) ([]models.NormalizedEvent, error)
}

// Registry maps every provider to its client.
type Registry struct {
	clients map[models.Provider]Client
}

func NewRegistry(google, microsoft Client) *Registry {
	return &Registry{clients: map[models.Provider]Client{
		models.ProviderGoogle:    google,
		models.ProviderMicrosoft: microsoft,
	}}
}

func (r *Registry) Client(p models.Provider) (Client, error) {
	c, ok := r.clients[p]
	if !ok || c == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, p)
	}
	return c, nil
}

// APIError is a non-2xx response from a calendar provider.
type APIError struct {
	Provider   models.Provider
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	name := "Google Calendar API"
	if e.Provider == models.ProviderMicrosoft {
		name = "Microsoft Graph API"
	}
	return fmt.Sprintf("%s error: %d %s", name, e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err signals a rejected access token.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}
	return strings.Contains(err.Error(), "401")
}

// DayWindow returns local midnight and local 23:59:59 of date as UTC instants.
func DayWindow(date string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	y, m, day := d.Date()
	start := time.Date(y, m, day, 0, 0, 0, 0, loc)
	end := time.Date(y, m, day, 23, 59, 59, 0, loc)
	return start.UTC(), end.UTC(), nil
}

func titleOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return untitledEvent
	}
	return s
}
