package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsletterDigest/internal/ports"
)

// Scheduler wires the cron driver with the newsletter use case.
type Scheduler struct {
	driver     ports.Scheduler
	newsletter *Newsletter
	runTimeout time.Duration
	runOnStart bool
	logger     *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, newsletter *Newsletter, runTimeout time.Duration, runOnStart bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		driver:     driver,
		newsletter: newsletter,
		runTimeout: runTimeout,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Start registers the newsletter run with the driver and, when configured,
// fires one run immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.newsletter == nil {
		return nil
	}

	job := func(trigger time.Time) {
		runCtx := ctx
		cancel := func() {}
		if s.runTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, s.runTimeout)
		}
		defer cancel()

		if err := s.newsletter.Run(runCtx); err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
		}
	}

	if err := s.driver.Start(ctx, job); err != nil {
		return err
	}

	if s.runOnStart {
		go job(time.Now())
	}

	return nil
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
