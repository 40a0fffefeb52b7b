package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybrief-backend/internal/models"
)

func recapFixture(t *testing.T) (*models.User, *fakeUsers, *fakeSummaries) {
	t.Helper()
	slackID := "U123"
	user := &models.User{
		ID:          uuid.New(),
		Email:       "ada@example.com",
		Timezone:    "America/Los_Angeles",
		RecapEmail:  true,
		RecapSlack:  true,
		SlackUserID: &slackID,
	}
	summaries := newFakeSummaries()
	summaries.rows["x"] = &models.Summary{
		ID:          uuid.New(),
		UserID:      user.ID,
		Date:        "2024-01-15",
		Title:       "Standup",
		StartsAt:    time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC),
		SummaryMd:   "- shipped",
		ActionItems: []string{"Ada: deploy"},
	}
	return user, newFakeUsers(user), summaries
}

func TestRecapSend_DeliversToBothChannels(t *testing.T) {
	user, users, summaries := recapFixture(t)
	mailer := &fakeMailer{enabled: true}
	slack := &fakeMessenger{enabled: true}
	svc := NewRecapService(users, summaries, mailer, slack, "https://app/settings")

	res, err := svc.Send(context.Background(), user.ID, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "slack"}, res.SentTo)
	assert.Contains(t, res.Content, "## 9:00 AM — Standup")
	assert.Equal(t, []string{"ada@example.com"}, mailer.sent)
	assert.Equal(t, []string{"U123"}, slack.sent)
	assert.Equal(t, "2024-01-15", users.sentOn[user.ID])
}

func TestRecapSend_ChannelsFailIndependently(t *testing.T) {
	user, users, summaries := recapFixture(t)
	mailer := &fakeMailer{enabled: true, err: errors.New("smtp down")}
	slack := &fakeMessenger{enabled: true}
	svc := NewRecapService(users, summaries, mailer, slack, "")

	res, err := svc.Send(context.Background(), user.ID, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"slack"}, res.SentTo)
	assert.Equal(t, []string{"email"}, res.Failed)
}

func TestRecapSend_RespectsPreferencesAndConfiguration(t *testing.T) {
	user, users, summaries := recapFixture(t)
	user.RecapSlack = false
	mailer := &fakeMailer{enabled: false}
	slack := &fakeMessenger{enabled: true}
	svc := NewRecapService(users, summaries, mailer, slack, "")

	res, err := svc.Send(context.Background(), user.ID, "2024-01-15")
	require.NoError(t, err)
	assert.Empty(t, res.SentTo)
	assert.NotNil(t, res.SentTo)
	assert.Empty(t, slack.sent)
	_, marked := users.sentOn[user.ID]
	assert.False(t, marked)
}

func TestRecapSend_EmptyDayIsNotDelivered(t *testing.T) {
	user, users, _ := recapFixture(t)
	mailer := &fakeMailer{enabled: true}
	svc := NewRecapService(users, newFakeSummaries(), mailer, &fakeMessenger{enabled: true}, "")

	res, err := svc.Send(context.Background(), user.ID, "2024-01-15")
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, "# Your DayBrief — 2024-01-15\n\nNo meetings today 🎉\n\n—\nSent by DayBrief", res.Content)
	assert.Empty(t, mailer.sent)
}

func TestRecapSend_DefaultsToTodayInUserZone(t *testing.T) {
	user, users, summaries := recapFixture(t)
	svc := NewRecapService(users, summaries, nil, nil, "")

	res, err := svc.Send(context.Background(), user.ID, "")
	require.NoError(t, err)
	want := time.Now().In(models.LoadLocation(user.Timezone)).Format("2006-01-02")
	assert.Equal(t, want, res.Date)
	assert.Equal(t, want, summaries.listDate)
}

func TestRecapSend_InvalidDate(t *testing.T) {
	user, users, summaries := recapFixture(t)
	svc := NewRecapService(users, summaries, nil, nil, "")
	_, err := svc.Send(context.Background(), user.ID, "Jan 15")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
