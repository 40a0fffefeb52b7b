package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"daybrief-backend/internal/calendar"
	"daybrief-backend/internal/models"
	"daybrief-backend/internal/repository"
)

type fakeUsers struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*models.User
	sentOn    map[uuid.UUID]string
	deleted   []uuid.UUID
	lastLogin []uuid.UUID
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*models.User{}, sentOn: map[uuid.UUID]string{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = uuid.New()
	u.RecapEmail = true
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	f.lastLogin = append(f.lastLogin, id)
	return nil
}

func (f *fakeUsers) UpdateSettings(_ context.Context, id uuid.UUID, req models.UpdateSettingsRequest) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if req.Timezone != nil {
		u.Timezone = *req.Timezone
	}
	if req.RecapEmail != nil {
		u.RecapEmail = *req.RecapEmail
	}
	if req.RecapSlack != nil {
		u.RecapSlack = *req.RecapSlack
	}
	if req.SlackUserID != nil {
		if *req.SlackUserID == "" {
			u.SlackUserID = nil
		} else {
			v := *req.SlackUserID
			u.SlackUserID = &v
		}
	}
	return u, nil
}

func (f *fakeUsers) ListRecapCandidates(context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) MarkRecapSent(_ context.Context, id uuid.UUID, date string) error {
	f.sentOn[id] = date
	return nil
}

func (f *fakeUsers) DeleteCascade(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAccounts struct {
	byUser   map[uuid.UUID]*models.Account
	upserted []*models.Account
	updated  []string
}

func newFakeAccounts(accts ...*models.Account) *fakeAccounts {
	f := &fakeAccounts{byUser: map[uuid.UUID]*models.Account{}}
	for _, a := range accts {
		f.byUser[a.UserID] = a
	}
	return f
}

func (f *fakeAccounts) Upsert(_ context.Context, a *models.Account) error {
	a.ID = uuid.New()
	f.upserted = append(f.upserted, a)
	f.byUser[a.UserID] = a
	return nil
}

func (f *fakeAccounts) GetByUser(_ context.Context, userID uuid.UUID) (*models.Account, error) {
	if a, ok := f.byUser[userID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccounts) UpdateAccessToken(_ context.Context, id uuid.UUID, token string, _ *time.Time) error {
	f.updated = append(f.updated, token)
	for _, a := range f.byUser {
		if a.ID == id {
			a.AccessToken = token
		}
	}
	return nil
}

type fakeSummaries struct {
	rows     map[string]*models.Summary
	upserts  int
	listDate string
}

func newFakeSummaries() *fakeSummaries {
	return &fakeSummaries{rows: map[string]*models.Summary{}}
}

func summaryKey(userID uuid.UUID, eventID string, p models.Provider) string {
	return userID.String() + "|" + eventID + "|" + string(p)
}

func (f *fakeSummaries) GetByIdentity(_ context.Context, userID uuid.UUID, eventID string, p models.Provider, date string) (*models.Summary, error) {
	if s, ok := f.rows[summaryKey(userID, eventID, p)]; ok && s.Date == date {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSummaries) ListByUserDate(_ context.Context, userID uuid.UUID, date string) ([]*models.Summary, error) {
	f.listDate = date
	out := []*models.Summary{}
	for _, s := range f.rows {
		if s.UserID == userID && s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSummaries) Upsert(_ context.Context, s *models.Summary) (bool, error) {
	f.upserts++
	key := summaryKey(s.UserID, s.EventID, s.Provider)
	if existing, ok := f.rows[key]; ok {
		existing.SummaryMd = s.SummaryMd
		existing.ActionItems = s.ActionItems
		existing.Confidence = s.Confidence
		*s = *existing
		return false, nil
	}
	s.ID = uuid.New()
	stored := *s
	f.rows[key] = &stored
	return true, nil
}

func (f *fakeSummaries) SetFinalized(_ context.Context, userID, id uuid.UUID, finalized bool) (*models.Summary, error) {
	for _, s := range f.rows {
		if s.ID == id && s.UserID == userID {
			s.Finalized = finalized
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeJobs struct {
	created []*models.Job
}

func (f *fakeJobs) Create(_ context.Context, j *models.Job) error {
	j.ID = uuid.New()
	j.Status = models.JobStatusPending
	f.created = append(f.created, j)
	return nil
}

func (f *fakeJobs) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	for _, j := range f.created {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, repository.ErrNotFound
}

type calendarCall struct {
	token      string
	start, end time.Time
}

type fakeCalendar struct {
	calls   []calendarCall
	results []error
	events  []models.NormalizedEvent
}

func (f *fakeCalendar) ListEvents(_ context.Context, token string, start, end time.Time) ([]models.NormalizedEvent, error) {
	f.calls = append(f.calls, calendarCall{token, start, end})
	if n := len(f.calls) - 1; n < len(f.results) && f.results[n] != nil {
		return nil, f.results[n]
	}
	return f.events, nil
}

type fakeRefresher struct {
	token *oauth2.Token
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(context.Context, models.Provider, string) (*oauth2.Token, error) {
	f.calls++
	return f.token, f.err
}

func registryWith(c calendar.Client) *calendar.Registry {
	return calendar.NewRegistry(c, c)
}

type fakeDocs struct {
	probed   []string
	enriched int
}

func (f *fakeDocs) CheckAccess(_ context.Context, token string) bool {
	f.probed = append(f.probed, token)
	return true
}

func (f *fakeDocs) Enrich(_ context.Context, _ string, atts []models.DocumentAttachment) {
	for i := range atts {
		if atts[i].Type == models.AttachmentDoc && atts[i].Content == "" {
			atts[i].Content = "doc body"
			f.enriched++
		}
	}
}

type fakeGenerator struct {
	prompts []string
	out     models.SummaryOutput
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (models.SummaryOutput, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

type recordingPublisher struct {
	msgs []models.WSMessage
}

func (p *recordingPublisher) Publish(_ context.Context, _ uuid.UUID, msg models.WSMessage) {
	p.msgs = append(p.msgs, msg)
}

type fakeMailer struct {
	enabled bool
	err     error
	sent    []string
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) SendRecap(to, date, markdown string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeMessenger struct {
	enabled bool
	err     error
	sent    []string
}

func (f *fakeMessenger) Enabled() bool { return f.enabled }

func (f *fakeMessenger) SendDM(_ context.Context, id, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, id)
	return nil
}
