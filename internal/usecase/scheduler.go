package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ainews/internal/domain"
	"ainews/internal/ports"
)

// CycleScheduler wires the interval driver to the ingestion pipeline and
// publishes a digest after runs that stored anything.
type CycleScheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewCycleScheduler returns a helper to start/stop recurring cycles.
func NewCycleScheduler(driver ports.Scheduler, pipeline *Pipeline, notifier ports.Notifier, logger *slog.Logger) *CycleScheduler {
	return &CycleScheduler{driver: driver, pipeline: pipeline, notifier: notifier, logger: logger}
}

// Start registers the ingestion cycle with the provided scheduler.
func (s *CycleScheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		report := s.pipeline.UpdateAll(ctx)
		s.logger.Info("scheduled cycle finished",
			"added", report.TotalAdded(), "skipped", len(report.Skipped))

		if s.notifier == nil || report.TotalAdded() == 0 {
			return
		}
		if err := s.notifier.PublishDigest(ctx, buildDigest(report)); err != nil {
			s.logger.Warn("digest publish failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *CycleScheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}

func buildDigest(report domain.Report) string {
	var formatted string
	for _, src := range report.Updated {
		if src.Err != nil {
			formatted += fmt.Sprintf("- %s: failed (%v)\n", src.Trigger, src.Err)
			continue
		}
		formatted += fmt.Sprintf("- %s: %d new articles\n", src.Trigger, src.Added)
	}
	for _, name := range report.Skipped {
		formatted += fmt.Sprintf("- %s: already up to date\n", name)
	}
	return formatted
}
