package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"daybrief-backend/internal/models"
)

// Queue is the Redis list-backed job queue the pool consumes.
type Queue struct {
	redis *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{redis: client}
}

func queueName(jobType string) string {
	return "queue:" + jobType
}

func (q *Queue) Enqueue(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.redis.RPush(ctx, queueName(job.Type), data).Err()
}

// Claim sets key if absent and reports whether this caller won it.
func (q *Queue) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return q.redis.SetNX(ctx, key, "1", ttl).Result()
}

// Release drops a claim so a later run can take it again.
func (q *Queue) Release(ctx context.Context, key string) error {
	return q.redis.Del(ctx, key).Err()
}
