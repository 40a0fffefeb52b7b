package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"daybrief-backend/internal/models"
)

const (
	recapPollInterval = 15 * time.Minute
	recapClaimTTL     = 26 * time.Hour
	recapMaxRetries   = 3
)

// JobQueue hands jobs to the worker pool.
type JobQueue interface {
	Enqueue(ctx context.Context, job *models.Job) error
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RecapScheduler enqueues one recap-delivery job per user per local day,
// at the configured local hour.
type RecapScheduler struct {
	users    userStore
	jobs     jobStore
	queue    JobQueue
	hour     int
	stopChan chan struct{}
}

func NewRecapScheduler(users userStore, jobs jobStore, queue JobQueue, hour int) *RecapScheduler {
	return &RecapScheduler{
		users:    users,
		jobs:     jobs,
		queue:    queue,
		hour:     hour,
		stopChan: make(chan struct{}),
	}
}

func (s *RecapScheduler) Start() {
	if s.users == nil || s.queue == nil {
		return
	}
	go s.loop()
	log.Printf("✓ Recap scheduler started (local hour %d)", s.hour)
}

func (s *RecapScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *RecapScheduler) loop() {
	// Run on startup as well as by interval.
	s.RunOnce(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(recapPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunOnce(context.Background(), time.Now().UTC())
		}
	}
}

// RunOnce enqueues recaps for every candidate that is due at now and
// returns how many were enqueued.
func (s *RecapScheduler) RunOnce(ctx context.Context, now time.Time) int {
	candidates, err := s.users.ListRecapCandidates(ctx)
	if err != nil {
		log.Printf("recap scheduler: failed to list recipients: %v", err)
		return 0
	}

	enqueued := 0
	for _, user := range candidates {
		date, due := recapDue(user, now, s.hour)
		if !due {
			continue
		}

		claimKey := fmt.Sprintf("recap_scheduled:%s:%s", user.ID, date)
		claimed, err := s.queue.Claim(ctx, claimKey, recapClaimTTL)
		if err != nil {
			log.Printf("recap scheduler: claim for user %s: %v", user.ID, err)
			continue
		}
		if !claimed {
			continue
		}

		config, _ := json.Marshal(models.RecapJobConfig{Date: date})
		job := &models.Job{
			UserID:     user.ID,
			Type:       models.JobTypeRecapDelivery,
			ConfigJSON: config,
			MaxRetries: recapMaxRetries,
		}
		if err := s.jobs.Create(ctx, job); err != nil {
			log.Printf("recap scheduler: failed to create job for user %s: %v", user.ID, err)
			s.release(ctx, claimKey)
			continue
		}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			log.Printf("recap scheduler: failed to enqueue job %s: %v", job.ID, err)
			s.release(ctx, claimKey)
			continue
		}
		enqueued++
	}
	return enqueued
}

func (s *RecapScheduler) release(ctx context.Context, key string) {
	if err := s.queue.Release(ctx, key); err != nil {
		log.Printf("recap scheduler: failed to release claim %s: %v", key, err)
	}
}

// recapDue reports whether the user's local clock is in the recap hour and
// today's recap has not gone out yet. date is the user's local date.
func recapDue(user *models.User, now time.Time, hour int) (string, bool) {
	local := now.In(models.LoadLocation(user.Timezone))
	date := local.Format("2006-01-02")
	if local.Hour() != hour {
		return date, false
	}
	if user.RecapLastSentOn != nil && *user.RecapLastSentOn >= date {
		return date, false
	}
	return date, true
}
