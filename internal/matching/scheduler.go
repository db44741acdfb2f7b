// internal/matching/scheduler.go

package matching

import (
	"context"
	"log"
	"time"
)

// Scheduler drives the background maintenance jobs: the expired-match
// sweep on a fixed interval, and the nightly swipe-log retention cleanup.
type Scheduler struct {
	service       Service
	sweepInterval time.Duration
}

func NewScheduler(service Service, sweepInterval time.Duration) *Scheduler {
	return &Scheduler{service: service, sweepInterval: sweepInterval}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.runInterval(ctx, s.sweepInterval, s.sweepExpired)

	// Retention cleanup nightly at 3 AM
	go s.runDaily(ctx, 3, 0, s.cleanupSwipes)
}

func (s *Scheduler) sweepExpired(ctx context.Context) error {
	swept, err := s.service.SweepExpiredMatches(ctx)
	if err != nil {
		return err
	}
	if swept > 0 {
		log.Printf("Swept %d expired matches", swept)
	}
	return nil
}

func (s *Scheduler) cleanupSwipes(ctx context.Context) error {
	deleted, err := s.service.CleanupSwipeLog(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("Deleted %d swipe records past retention", deleted)
	}
	return nil
}

func (s *Scheduler) runInterval(ctx context.Context, interval time.Duration, task func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := task(ctx); err != nil {
				log.Printf("Scheduled task failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runDaily(ctx context.Context, hour, minute int, task func(context.Context) error) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			if err := task(ctx); err != nil {
				log.Printf("Scheduled task failed: %v", err)
			}
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
