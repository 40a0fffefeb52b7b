package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"daybrief-backend/internal/metrics"
	"daybrief-backend/internal/models"
	"daybrief-backend/internal/recap"
	"daybrief-backend/internal/repository"
)

const (
	ChannelEmail = "email"
	ChannelSlack = "slack"
)

type recapMailer interface {
	Enabled() bool
	SendRecap(to, date, markdown string) error
}

type recapMessenger interface {
	Enabled() bool
	SendDM(ctx context.Context, slackUserID, text string) error
}

type RecapResult struct {
	Date    string
	SentTo  []string
	Failed  []string // channels attempted that returned an error
	Content string
	Empty   bool
}

// RecapService composes a day's digest and delivers it to the user's
// enabled channels.
type RecapService struct {
	users       userStore
	summaries   summaryStore
	mailer      recapMailer
	messenger   recapMessenger
	settingsURL string
}

func NewRecapService(users userStore, summaries summaryStore, mailer recapMailer, messenger recapMessenger, settingsURL string) *RecapService {
	return &RecapService{
		users:       users,
		summaries:   summaries,
		mailer:      mailer,
		messenger:   messenger,
		settingsURL: settingsURL,
	}
}

// Send delivers the recap for date (today in the user's timezone when
// empty). Channels fail independently; a channel error is logged and the
// channel is left out of SentTo. A day without summaries is not delivered.
func (s *RecapService) Send(ctx context.Context, userID uuid.UUID, date string) (*RecapResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}

	if date == "" {
		date = time.Now().In(models.LoadLocation(user.Timezone)).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &ValidationError{
			Message: "Invalid date",
			Fields:  map[string]string{"date": "Date must be in YYYY-MM-DD format"},
		}
	}

	summaries, err := s.summaries.ListByUserDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	digest := recap.Compose(summaries, date, user.Timezone, s.settingsURL)
	result := &RecapResult{Date: date, SentTo: []string{}, Content: digest.Markdown, Empty: digest.Empty}
	if digest.Empty {
		return result, nil
	}

	if user.RecapEmail && user.Email != "" && s.mailer != nil && s.mailer.Enabled() {
		if err := s.mailer.SendRecap(user.Email, date, digest.Markdown); err != nil {
			log.Printf("✗ recap email for user %s: %v", userID, err)
			metrics.RecapDeliveries.WithLabelValues(ChannelEmail, "failed").Inc()
			result.Failed = append(result.Failed, ChannelEmail)
		} else {
			result.SentTo = append(result.SentTo, ChannelEmail)
			metrics.RecapDeliveries.WithLabelValues(ChannelEmail, "ok").Inc()
		}
	}

	if user.RecapSlack && user.SlackUserID != nil && *user.SlackUserID != "" && s.messenger != nil && s.messenger.Enabled() {
		if err := s.messenger.SendDM(ctx, *user.SlackUserID, digest.Markdown); err != nil {
			log.Printf("✗ recap Slack DM for user %s: %v", userID, err)
			metrics.RecapDeliveries.WithLabelValues(ChannelSlack, "failed").Inc()
			result.Failed = append(result.Failed, ChannelSlack)
		} else {
			result.SentTo = append(result.SentTo, ChannelSlack)
			metrics.RecapDeliveries.WithLabelValues(ChannelSlack, "ok").Inc()
		}
	}

	if len(result.SentTo) > 0 {
		if err := s.users.MarkRecapSent(ctx, userID, date); err != nil {
			log.Printf("⚠ failed to record recap for user %s on %s: %v", userID, date, err)
		}
	}
	return result, nil
}
