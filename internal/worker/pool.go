package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"daybrief-backend/internal/models"
	"daybrief-backend/internal/services"
)

const (
	popTimeout = 30 * time.Second
	lockTTL    = 10 * time.Minute
)

type recapSender interface {
	Send(ctx context.Context, userID uuid.UUID, date string) (*services.RecapResult, error)
}

type jobUpdater interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetCompleted(ctx context.Context, id uuid.UUID, result any) error
	SetFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	IncrementRetry(ctx context.Context, id uuid.UUID, errMsg string) (int, error)
}

type Pool struct {
	redis       *redis.Client
	recaps      recapSender
	jobs        jobUpdater
	publisher   services.Publisher
	workerCount int
	stopChan    chan struct{}
	requeue     func(job *models.Job, delay time.Duration)
}

func NewPool(redisClient *redis.Client, recaps recapSender, jobs jobUpdater, publisher services.Publisher, workerCount int) *Pool {
	p := &Pool{
		redis:       redisClient,
		recaps:      recaps,
		jobs:        jobs,
		publisher:   publisher,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
	p.requeue = p.requeueAfter
	return p
}

func (p *Pool) Start() {
	queues := []string{queueName(models.JobTypeRecapDelivery)}
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}
	log.Printf("✓ Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, popTimeout, queues...).Result()
		if err != nil || len(result) < 2 {
			continue // timeout or transient error
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID)
		locked, err := p.redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if err != nil || !locked {
			continue // another worker has this job
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)
		p.handle(ctx, &job)

		p.redis.Del(ctx, lockKey)
	}
}

// handle runs one job and records its outcome.
func (p *Pool) handle(ctx context.Context, job *models.Job) {
	if err := p.jobs.UpdateStatus(ctx, job.ID, models.JobStatusProcessing); err != nil {
		log.Printf("⚠ job %s: failed to mark processing: %v", job.ID, err)
	}

	var (
		result *services.RecapResult
		err    error
	)
	switch job.Type {
	case models.JobTypeRecapDelivery:
		result, err = p.processRecap(ctx, job)
	default:
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		p.handleFailure(ctx, job, err)
		return
	}
	p.handleSuccess(ctx, job, result)
}

func (p *Pool) processRecap(ctx context.Context, job *models.Job) (*services.RecapResult, error) {
	var cfg models.RecapJobConfig
	if len(job.ConfigJSON) > 0 {
		if err := json.Unmarshal(job.ConfigJSON, &cfg); err != nil {
			return nil, fmt.Errorf("invalid recap job config: %w", err)
		}
	}
	result, err := p.recaps.Send(ctx, job.UserID, cfg.Date)
	if err != nil {
		return nil, err
	}
	// Nothing delivered although channels were tried: retry so an outage
	// does not lose the day's recap.
	if !result.Empty && len(result.SentTo) == 0 && len(result.Failed) > 0 {
		return nil, fmt.Errorf("recap delivery failed on all channels: %s", strings.Join(result.Failed, ", "))
	}
	return result, nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job, result *services.RecapResult) {
	jobID := job.ID
	event := models.RecapSentEvent{JobID: &jobID, Date: result.Date, SentTo: result.SentTo}
	if err := p.jobs.SetCompleted(ctx, job.ID, event); err != nil {
		log.Printf("⚠ job %s: failed to store result: %v", job.ID, err)
	}

	p.publisher.Publish(ctx, job.UserID, models.WSMessage{Type: models.WSRecapSent, Payload: event})
	log.Printf("Job %s completed (sent to %v)", job.ID, result.SentTo)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	errMsg := err.Error()
	maxRetries := job.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	count, incErr := p.jobs.IncrementRetry(ctx, job.ID, errMsg)
	if incErr != nil {
		log.Printf("⚠ job %s: failed to record retry: %v", job.ID, incErr)
		count = job.RetryCount + 1
	}
	job.RetryCount = count

	if count < maxRetries {
		log.Printf("Job %s failed (attempt %d): %s, retrying", job.ID, count, errMsg)
		p.requeue(job, time.Duration(1<<uint(count))*time.Second)
		return
	}

	log.Printf("✗ Job %s failed permanently: %s", job.ID, errMsg)
	if err := p.jobs.SetFailed(ctx, job.ID, errMsg); err != nil {
		log.Printf("⚠ job %s: failed to mark failed: %v", job.ID, err)
	}
	p.publisher.Publish(ctx, job.UserID, models.WSMessage{
		Type: models.WSRecapFailed,
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    "JOB_FAILED",
			ErrorMessage: errMsg,
		},
	})
}

func (p *Pool) requeueAfter(job *models.Job, delay time.Duration) {
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	time.AfterFunc(delay, func() {
		p.redis.LPush(context.Background(), queueName(job.Type), string(data))
	})
}
