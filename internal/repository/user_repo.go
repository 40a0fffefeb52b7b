package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"daybrief-backend/internal/models"
)

const userColumns = `id, email, name, image, timezone, recap_email, recap_slack, slack_user_id,
	to_char(recap_last_sent_on, 'YYYY-MM-DD'), created_at, updated_at, last_login_at`

type UserRepo struct {
	db DB
}

func NewUserRepo(db DB) *UserRepo {
	return &UserRepo{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Image, &u.Timezone, &u.RecapEmail, &u.RecapSlack, &u.SlackUserID,
		&u.RecapLastSentOn, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a user with the default timezone and recap preferences.
func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	u.ID = uuid.New()
	if u.Timezone == "" {
		u.Timezone = models.DefaultTimezone
	}
	query := `INSERT INTO users (id, email, name, image, timezone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING recap_email, recap_slack, created_at, updated_at`
	return r.db.QueryRow(ctx, query, u.ID, u.Email, u.Name, u.Image, u.Timezone).
		Scan(&u.RecapEmail, &u.RecapSlack, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET last_login_at = NOW() WHERE id = $1", id)
	return err
}

// UpdateSettings applies the non-nil fields of req. An empty slackUserId
// clears the stored value.
func (r *UserRepo) UpdateSettings(ctx context.Context, id uuid.UUID, req models.UpdateSettingsRequest) (*models.User, error) {
	query := `UPDATE users SET
			timezone = COALESCE($2, timezone),
			recap_email = COALESCE($3, recap_email),
			recap_slack = COALESCE($4, recap_slack),
			slack_user_id = CASE WHEN $5::text IS NULL THEN slack_user_id ELSE NULLIF($5::text, '') END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, id, req.Timezone, req.RecapEmail, req.RecapSlack, req.SlackUserID))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// ListRecapCandidates returns users with at least one recap channel enabled.
func (r *UserRepo) ListRecapCandidates(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users
		WHERE recap_email OR (recap_slack AND slack_user_id IS NOT NULL)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) MarkRecapSent(ctx context.Context, id uuid.UUID, date string) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET recap_last_sent_on = $2 WHERE id = $1", id, date)
	return err
}

// DeleteCascade erases the user and everything owned by it in one transaction.
func (r *UserRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		"DELETE FROM summaries WHERE user_id = $1",
		"DELETE FROM accounts WHERE user_id = $1",
		"DELETE FROM jobs WHERE user_id = $1",
	} {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete user data: %w", err)
		}
	}
	tag, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// LocalDate is the calendar date of t for the user.
func LocalDate(t time.Time, timezone string) string {
	return t.In(models.LoadLocation(timezone)).Format(dateLayout)
}
