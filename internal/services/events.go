package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"daybrief-backend/internal/calendar"
	"daybrief-backend/internal/metrics"
	"daybrief-backend/internal/models"
	"daybrief-backend/internal/repository"
)

const (
	msgNoCalendarAccess = "No calendar access"
	msgCalendarExpired  = "Calendar access expired. Please sign in again."
)

type calendarRegistry interface {
	Client(p models.Provider) (calendar.Client, error)
}

type tokenRefresher interface {
	Refresh(ctx context.Context, provider models.Provider, refreshToken string) (*oauth2.Token, error)
}

// EventService reads a user's calendar for one local day.
type EventService struct {
	users     userStore
	accounts  accountStore
	registry  calendarRegistry
	refresher tokenRefresher
}

func NewEventService(users userStore, accounts accountStore, registry calendarRegistry, refresher tokenRefresher) *EventService {
	return &EventService{users: users, accounts: accounts, registry: registry, refresher: refresher}
}

// ListEvents returns the events of date (YYYY-MM-DD) in the user's timezone.
// An empty date means today in that timezone. A rejected access token is
// refreshed and the fetch retried once.
func (s *EventService) ListEvents(ctx context.Context, userID uuid.UUID, date string) ([]models.NormalizedEvent, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}

	loc := models.LoadLocation(user.Timezone)
	if date == "" {
		date = time.Now().In(loc).Format("2006-01-02")
	}
	start, end, err := calendar.DayWindow(date, loc)
	if err != nil {
		return nil, &ValidationError{
			Message: "Invalid date",
			Fields:  map[string]string{"date": "Date must be in YYYY-MM-DD format"},
		}
	}

	account, err := s.accounts.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if account == nil || account.AccessToken == "" {
		return nil, &ForbiddenError{Message: msgNoCalendarAccess}
	}

	client, err := s.registry.Client(account.Provider)
	if err != nil {
		return nil, &ValidationError{Message: "Unsupported provider"}
	}

	events, err := client.ListEvents(ctx, account.AccessToken, start, end)
	if err == nil {
		return events, nil
	}
	log.Printf("✗ calendar fetch for user %s (%s): %v", userID, account.Provider, err)

	if account.RefreshToken == "" || !calendar.IsUnauthorized(err) {
		return nil, &UpstreamError{Service: "calendar", Message: "Failed to fetch calendar events", Err: err}
	}

	events, err = s.refreshAndRetry(ctx, client, account, start, end)
	if err != nil {
		log.Printf("✗ token refresh for user %s (%s): %v", userID, account.Provider, err)
		return nil, &ForbiddenError{Message: msgCalendarExpired}
	}
	return events, nil
}

func (s *EventService) refreshAndRetry(ctx context.Context, client calendar.Client, account *models.Account, start, end time.Time) ([]models.NormalizedEvent, error) {
	tok, err := s.refresher.Refresh(ctx, account.Provider, account.RefreshToken)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues(string(account.Provider), "failed").Inc()
		return nil, err
	}
	metrics.TokenRefreshes.WithLabelValues(string(account.Provider), "ok").Inc()

	var expiresAt *time.Time
	if !tok.Expiry.IsZero() {
		expiresAt = &tok.Expiry
	}
	if err := s.accounts.UpdateAccessToken(ctx, account.ID, tok.AccessToken, expiresAt); err != nil {
		return nil, err
	}
	account.AccessToken = tok.AccessToken

	return client.ListEvents(ctx, tok.AccessToken, start, end)
}
