package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"daybrief-backend/internal/models"
)

type JobRepo struct {
	db DB
}

func NewJobRepo(db DB) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) Create(ctx context.Context, j *models.Job) error {
	j.ID = uuid.New()
	j.Status = models.JobStatusPending
	j.RetryCount = 0
	if j.MaxRetries == 0 {
		j.MaxRetries = 3
	}
	config := []byte(j.ConfigJSON)
	if len(config) == 0 {
		config = []byte("{}")
	}

	query := `INSERT INTO jobs (id, user_id, type, config_json, status, retry_count, max_retries)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`

	return r.db.QueryRow(ctx, query,
		j.ID, j.UserID, j.Type, config, j.Status, j.RetryCount, j.MaxRetries,
	).Scan(&j.CreatedAt)
}

func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j := &models.Job{}
	var config, result []byte
	query := `SELECT id, user_id, type, config_json, status, retry_count, max_retries,
			error_message, result_json, created_at, completed_at
		FROM jobs WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&j.ID, &j.UserID, &j.Type, &config, &j.Status, &j.RetryCount, &j.MaxRetries,
		&j.ErrorMessage, &result, &j.CreatedAt, &j.CompletedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	j.ConfigJSON = config
	if len(result) > 0 {
		j.Result = result
	}
	return j, nil
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		_, err := r.db.Exec(ctx, "UPDATE jobs SET status = $1, completed_at = NOW() WHERE id = $2", status, id)
		return err
	}
	_, err := r.db.Exec(ctx, "UPDATE jobs SET status = $1 WHERE id = $2", status, id)
	return err
}

func (r *JobRepo) SetCompleted(ctx context.Context, id uuid.UUID, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		"UPDATE jobs SET status = $1, result_json = $2, error_message = NULL, completed_at = NOW() WHERE id = $3",
		models.JobStatusCompleted, data, id,
	)
	return err
}

// SetFailed marks the job permanently failed.
func (r *JobRepo) SetFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE jobs SET status = $1, error_message = $2, completed_at = NOW() WHERE id = $3",
		models.JobStatusFailed, errMsg, id,
	)
	return err
}

// IncrementRetry records a failed attempt and puts the job back to pending.
func (r *JobRepo) IncrementRetry(ctx context.Context, id uuid.UUID, errMsg string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"UPDATE jobs SET status = $1, error_message = $2, retry_count = retry_count + 1 WHERE id = $3 RETURNING retry_count",
		models.JobStatusPending, errMsg, id,
	).Scan(&count)
	return count, notFound(err)
}
