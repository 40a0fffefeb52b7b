package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"daybrief-backend/internal/models"
	"daybrief-backend/internal/repository"
)

type JobService struct {
	jobs jobStore
}

func NewJobService(jobs jobStore) *JobService {
	return &JobService{jobs: jobs}
}

// Get returns a job owned by userID. Other users' jobs are reported as
// missing.
func (s *JobService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "Job not found"}
		}
		return nil, err
	}
	if job.UserID != userID {
		return nil, &NotFoundError{Message: "Job not found"}
	}
	return job, nil
}
