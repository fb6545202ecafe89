// Package scheduler wraps gocron to drive periodic availability checks.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Runner is the unit of work the scheduler triggers. Cycle is expected to be
// safe against overlapping invocations.
type Runner interface {
	Cycle(ctx context.Context)
}

// Config holds the scheduler configuration.
type Config struct {
	Runner   Runner
	Interval time.Duration
	Logger   *slog.Logger
	// RunOnStart fires a cycle immediately when Start is called instead of
	// waiting for the first interval tick.
	RunOnStart bool
}

// Scheduler manages the periodic check job plus any one-off follow-up jobs.
type Scheduler struct {
	cron   gocron.Scheduler
	cfg    Config
	jobs   map[string]uuid.UUID
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("scheduler requires a runner")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("invalid check interval: %s", cfg.Interval)
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:   cron,
		cfg:    cfg,
		jobs:   make(map[string]uuid.UUID),
		logger: logger,
	}, nil
}

// Start registers the periodic job and starts the gocron scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	opts := []gocron.JobOption{}
	if s.cfg.RunOnStart {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	job, err := s.cron.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(func() { s.cfg.Runner.Cycle(ctx) }),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("scheduling periodic check: %w", err)
	}

	s.mu.Lock()
	s.jobs["periodic"] = job.ID()
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "interval", s.cfg.Interval)
	return nil
}

// ScheduleNext registers a one-off cycle that fires after the given delay,
// replacing any pending one-off job. The watcher uses this to retry sooner
// than the regular interval after a cycle with transient fetch failures.
func (s *Scheduler) ScheduleNext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return fmt.Errorf("invalid delay: %s", delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if jobID, ok := s.jobs["oneoff"]; ok {
		if err := s.cron.RemoveJob(jobID); err != nil {
			s.logger.Warn("failed to remove pending one-off job", "error", err)
		}
		delete(s.jobs, "oneoff")
	}

	job, err := s.cron.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(delay))),
		gocron.NewTask(func() { s.cfg.Runner.Cycle(ctx) }),
	)
	if err != nil {
		return fmt.Errorf("scheduling one-off check: %w", err)
	}

	s.jobs["oneoff"] = job.ID()
	s.logger.Info("one-off check scheduled", "delay", delay)
	return nil
}

// Stop shuts down the gocron scheduler.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}
