package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"daybrief-backend/internal/models"
)

type userStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdateSettings(ctx context.Context, id uuid.UUID, req models.UpdateSettingsRequest) (*models.User, error)
	ListRecapCandidates(ctx context.Context) ([]*models.User, error)
	MarkRecapSent(ctx context.Context, id uuid.UUID, date string) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type accountStore interface {
	Upsert(ctx context.Context, a *models.Account) error
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.Account, error)
	UpdateAccessToken(ctx context.Context, id uuid.UUID, accessToken string, expiresAt *time.Time) error
}

type summaryStore interface {
	GetByIdentity(ctx context.Context, userID uuid.UUID, eventID string, provider models.Provider, date string) (*models.Summary, error)
	ListByUserDate(ctx context.Context, userID uuid.UUID, date string) ([]*models.Summary, error)
	Upsert(ctx context.Context, s *models.Summary) (bool, error)
	SetFinalized(ctx context.Context, userID, id uuid.UUID, finalized bool) (*models.Summary, error)
}

type jobStore interface {
	Create(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// Publisher pushes a realtime update to every open socket of a user.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, uuid.UUID, models.WSMessage) {}
