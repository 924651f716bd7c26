// Package scheduler is the built-in periodic trigger for publication runs,
// used when no external job runner calls the HTTP endpoint.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"content_publisher/internal/domain"
)

type Publisher interface {
	RunScheduledPublication(ctx context.Context, now time.Time) (*domain.PublicationReport, error)
}

type Scheduler struct {
	publisher Publisher
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewScheduler(publisher Publisher, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		publisher: publisher,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start runs once immediately and then on every tick until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.publisher.RunScheduledPublication(ctx, s.now()); err != nil {
		s.logger.Error("publication run failed", "error", err)
	}
}
