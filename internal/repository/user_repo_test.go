package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybrief-backend/internal/models"
)

var userCols = []string{
	"id", "email", "name", "image", "timezone", "recap_email", "recap_slack", "slack_user_id",
	"recap_last_sent_on", "created_at", "updated_at", "last_login_at",
}

func TestUserCreateDefaultsTimezone(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepo(mock)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "ada@example.com", "Ada", (*string)(nil), models.DefaultTimezone).
		WillReturnRows(pgxmock.NewRows([]string{"recap_email", "recap_slack", "created_at", "updated_at"}).
			AddRow(true, false, now, now))

	u := &models.User{Email: "ada@example.com", Name: "Ada"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, models.DefaultTimezone, u.Timezone)
	assert.True(t, u.RecapEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateSettingsPassesOnlyProvidedFields(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepo(mock)

	id := uuid.New()
	tz := "Europe/Berlin"
	slack := ""
	now := time.Now()

	mock.ExpectQuery("UPDATE users SET").
		WithArgs(id, &tz, (*bool)(nil), (*bool)(nil), &slack).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(id, "ada@example.com", "Ada", (*string)(nil), tz, true, false, (*string)(nil),
				(*string)(nil), now, now, (*time.Time)(nil)))

	u, err := repo.UpdateSettings(context.Background(), id, models.UpdateSettingsRequest{Timezone: &tz, SlackUserID: &slack})
	require.NoError(t, err)
	assert.Equal(t, tz, u.Timezone)
	assert.Nil(t, u.SlackUserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDeleteCascadeRunsInOneTransaction(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepo(mock)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM summaries").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("DELETE FROM accounts").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM jobs").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM users").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteCascade(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDeleteCascadeUnknownUserRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepo(mock)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM summaries").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM accounts").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM jobs").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM users").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := repo.DeleteCascade(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalDate(t *testing.T) {
	ts := time.Date(2024, 1, 16, 3, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-15", LocalDate(ts, "America/Los_Angeles"))
	assert.Equal(t, "2024-01-16", LocalDate(ts, "Not/AZone"))
}
