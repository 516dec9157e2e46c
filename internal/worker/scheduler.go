package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Scheduler runs a RefreshJob on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       *RefreshJob
	interval  time.Duration
	logger    zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler for the job using the job's interval.
func NewScheduler(job *RefreshJob, logger zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// A slow run must not overlap the next tick.
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		job:       job,
		interval:  job.Config().Interval,
		logger:    logger,
	}
}

// Start schedules the job, runs it immediately, and returns without blocking.
// The context bounds every run; cancelling it aborts the run in flight.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler.IsRunning() {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.logger.Debug().Msg("scheduled cache warm triggered")
		s.job.Run(s.ctx)
	})
	if err != nil {
		s.cancel()
		return fmt.Errorf("scheduling cache warm job: %w", err)
	}

	s.logger.Info().
		Dur("interval", s.interval).
		Int("cities", len(s.job.Config().Cities)).
		Msg("cache warm scheduler started")

	s.scheduler.StartAsync()
	return nil
}

// Running reports whether the scheduler has been started.
func (s *Scheduler) Running() bool {
	return s.scheduler.IsRunning()
}

// Stop cancels the run in flight and stops future runs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.scheduler.Stop()
	s.logger.Info().Msg("cache warm scheduler stopped")
}
