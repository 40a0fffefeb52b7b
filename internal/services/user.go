package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"daybrief-backend/internal/models"
	"daybrief-backend/internal/repository"
)

type sessionRevoker interface {
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type UserService struct {
	users    userStore
	sessions sessionRevoker
}

func NewUserService(users userStore, sessions sessionRevoker) *UserService {
	return &UserService{users: users, sessions: sessions}
}

func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}
	return user, nil
}

// UpdateSettings applies a partial settings change. The timezone must be an
// IANA zone name.
func (s *UserService) UpdateSettings(ctx context.Context, userID uuid.UUID, req models.UpdateSettingsRequest) (*models.User, error) {
	fields := map[string]string{}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if _, err := time.LoadLocation(tz); err != nil || tz == "" || strings.EqualFold(tz, "local") {
			fields["timezone"] = "Unknown timezone"
		}
		req.Timezone = &tz
	}
	if req.SlackUserID != nil {
		id := strings.TrimSpace(*req.SlackUserID)
		req.SlackUserID = &id
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "Invalid settings data", Fields: fields}
	}

	user, err := s.users.UpdateSettings(ctx, userID, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}
	return user, nil
}

// DeleteData erases the user's records and ends every session.
func (s *UserService) DeleteData(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.DeleteCascade(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Message: "User not found"}
		}
		return err
	}
	if s.sessions != nil {
		return s.sessions.RevokeAll(ctx, userID)
	}
	return nil
}
