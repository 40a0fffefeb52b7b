package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybrief-backend/internal/models"
)

type summaryFixture struct {
	user      *models.User
	accounts  *fakeAccounts
	summaries *fakeSummaries
	docs      *fakeDocs
	gen       *fakeGenerator
	pub       *recordingPublisher
	svc       *SummaryService
}

func newSummaryFixture(provider models.Provider) *summaryFixture {
	f := &summaryFixture{
		user:      &models.User{ID: uuid.New(), Email: "ada@example.com", Timezone: "America/Los_Angeles"},
		summaries: newFakeSummaries(),
		docs:      &fakeDocs{},
		gen:       &fakeGenerator{out: models.SummaryOutput{SummaryMd: "- new", ActionItems: []string{"Ada: ship"}, Confidence: 0.9}},
		pub:       &recordingPublisher{},
	}
	f.accounts = newFakeAccounts(&models.Account{ID: uuid.New(), UserID: f.user.ID, Provider: provider, AccessToken: "g-token"})
	f.svc = NewSummaryService(newFakeUsers(f.user), f.accounts, f.summaries, f.docs, f.gen, f.pub)
	return f
}

func sampleEvent() models.NormalizedEvent {
	return models.NormalizedEvent{
		ID:       "evt-1",
		Provider: models.ProviderGoogle,
		Title:    "Planning",
		// 02:30 UTC on the 16th is still the 15th in Los Angeles.
		StartsAt:  "2024-01-16T02:30:00Z",
		EndsAt:    "2024-01-16T03:00:00Z",
		Attendees: []models.Attendee{{Name: "Ada", Email: "ada@example.com", Required: true}},
	}
}

func TestSummarize_CreatesWithLocalDate(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)

	s, err := f.svc.Summarize(context.Background(), f.user.ID, sampleEvent(), false)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", s.Date)
	assert.Equal(t, "- new", s.SummaryMd)
	assert.False(t, s.Finalized)
	assert.Len(t, f.gen.prompts, 1)
	require.Len(t, f.pub.msgs, 1)
	assert.Equal(t, models.WSSummaryReady, f.pub.msgs[0].Type)
}

func TestSummarize_FinalizedIsServedFromStore(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)
	ctx := context.Background()

	first, err := f.svc.Summarize(ctx, f.user.ID, sampleEvent(), false)
	require.NoError(t, err)
	_, err = f.svc.SetFinalized(ctx, f.user.ID, first.ID, true)
	require.NoError(t, err)

	f.gen.out = models.SummaryOutput{SummaryMd: "- different"}
	again, err := f.svc.Summarize(ctx, f.user.ID, sampleEvent(), false)
	require.NoError(t, err)
	assert.Equal(t, "- new", again.SummaryMd)
	assert.Len(t, f.gen.prompts, 1, "no generator call on a cache hit")
	assert.Equal(t, 1, f.summaries.upserts)
}

func TestSummarize_RegenerateBypassesFinalizedAndKeepsFlag(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)
	ctx := context.Background()

	first, err := f.svc.Summarize(ctx, f.user.ID, sampleEvent(), false)
	require.NoError(t, err)
	_, err = f.svc.SetFinalized(ctx, f.user.ID, first.ID, true)
	require.NoError(t, err)

	f.gen.out = models.SummaryOutput{SummaryMd: "- regenerated", ActionItems: []string{}, Confidence: 0.5}
	again, err := f.svc.Summarize(ctx, f.user.ID, sampleEvent(), true)
	require.NoError(t, err)
	assert.Equal(t, "- regenerated", again.SummaryMd)
	assert.True(t, again.Finalized)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, f.gen.prompts, 2)
}

func TestSummarize_UnfinalizedIsRegenerated(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)
	ctx := context.Background()

	_, err := f.svc.Summarize(ctx, f.user.ID, sampleEvent(), false)
	require.NoError(t, err)
	_, err = f.svc.Summarize(ctx, f.user.ID, sampleEvent(), false)
	require.NoError(t, err)
	assert.Len(t, f.gen.prompts, 2)
	assert.Len(t, f.summaries.rows, 1)
}

func TestSummarize_EnrichesDocsForGoogleAccount(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)
	ev := sampleEvent()
	ev.Attachments = []models.DocumentAttachment{
		{ID: "d1", Title: "Agenda", Type: models.AttachmentDoc},
		{ID: "s1", Title: "Budget", Type: models.AttachmentSheet},
	}

	_, err := f.svc.Summarize(context.Background(), f.user.ID, ev, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"g-token"}, f.docs.probed)
	assert.Equal(t, 1, f.docs.enriched)
	assert.Contains(t, f.gen.prompts[0], "--- Agenda ---")
	assert.Contains(t, f.gen.prompts[0], "doc body")
}

func TestSummarize_MicrosoftAccountSkipsDocFetch(t *testing.T) {
	f := newSummaryFixture(models.ProviderMicrosoft)
	ev := sampleEvent()
	ev.Attachments = []models.DocumentAttachment{{ID: "d1", Title: "Agenda", Type: models.AttachmentDoc}}

	_, err := f.svc.Summarize(context.Background(), f.user.ID, ev, false)
	require.NoError(t, err)
	assert.Empty(t, f.docs.probed)
	assert.NotContains(t, f.gen.prompts[0], "Document Content:")
}

func TestSummarize_GeneratorFailureIsUpstream(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)
	f.gen.err = errors.New("LLM API error: 500 boom")

	_, err := f.svc.Summarize(context.Background(), f.user.ID, sampleEvent(), false)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Empty(t, f.summaries.rows)
	assert.Empty(t, f.pub.msgs)
}

func TestSummarize_BadTimestamp(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)
	ev := sampleEvent()
	ev.StartsAt = "yesterday"

	_, err := f.svc.Summarize(context.Background(), f.user.ID, ev, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "event.startsAt")
}

func TestSummarize_EndBeforeStartIsRejected(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)
	ev := sampleEvent()
	ev.StartsAt = "2024-01-16T05:00:00Z"
	ev.EndsAt = "2024-01-16T03:00:00Z"

	_, err := f.svc.Summarize(context.Background(), f.user.ID, ev, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "event.endsAt")
	assert.Empty(t, f.gen.prompts)
	assert.Empty(t, f.summaries.rows)
}

func TestSummarize_ZeroLengthEventIsAccepted(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)
	ev := sampleEvent()
	ev.EndsAt = ev.StartsAt

	_, err := f.svc.Summarize(context.Background(), f.user.ID, ev, false)
	require.NoError(t, err)
}

func TestSetFinalized_UnknownSummary(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)
	_, err := f.svc.SetFinalized(context.Background(), f.user.ID, uuid.New(), true)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestListSummaries_ValidatesDate(t *testing.T) {
	f := newSummaryFixture(models.ProviderGoogle)
	_, err := f.svc.List(context.Background(), f.user.ID, "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	list, err := f.svc.List(context.Background(), f.user.ID, "2024-01-15")
	require.NoError(t, err)
	assert.Empty(t, list)
}
