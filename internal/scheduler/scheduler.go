// Package scheduler runs ROI sweeps on a fixed cadence and on startup.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/middleware"
)

// Sweeper is the part of the ROI engine the scheduler drives.
type Sweeper interface {
	ProcessSweep(ctx context.Context, now time.Time) domain.SweepResult
	Now() time.Time
}

// Config holds scheduler settings.
type Config struct {
	// Interval between sweeps.
	Interval time.Duration
	// RunOnStart sweeps once when Run starts, catching up on sweeps missed while offline.
	RunOnStart bool
}

// Scheduler triggers ROI sweeps. At most one sweep runs at a time; a trigger that arrives
// while a sweep is in flight is skipped.
type Scheduler struct {
	sweeper Sweeper
	cfg     Config

	inFlight atomic.Bool

	mu         sync.Mutex
	lastRunAt  *time.Time
	lastResult *domain.SweepResult
}

// New creates a scheduler.
func New(sweeper Sweeper, cfg Config) *Scheduler {
	return &Scheduler{sweeper: sweeper, cfg: cfg}
}

var _ portssvc.SweepRunnerSvc = (*Scheduler)(nil)

// Run sweeps every Interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Info("ROI scheduler started", slog.Duration("interval", s.cfg.Interval))

	if s.cfg.RunOnStart {
		s.TriggerSweep(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("ROI scheduler stopped")
			return nil
		case <-ticker.C:
			s.TriggerSweep(ctx)
		}
	}
}

// TriggerSweep runs one sweep unless another is already running.
func (s *Scheduler) TriggerSweep(ctx context.Context) (domain.SweepResult, bool) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if !s.inFlight.CompareAndSwap(false, true) {
		logger.Info("ROI sweep already in progress, skipping")
		return domain.SweepResult{}, false
	}
	defer s.inFlight.Store(false)

	now := s.sweeper.Now()
	logger.Info("ROI sweep starting", slog.Time("now", now))
	result := s.sweeper.ProcessSweep(ctx, now)

	s.mu.Lock()
	s.lastRunAt = &now
	s.lastResult = &result
	s.mu.Unlock()

	if len(result.Errors) > 0 {
		logger.Warn("ROI sweep finished with errors",
			slog.Int("processed", result.Processed),
			slog.Any("errors", result.Errors))
	} else {
		logger.Info("ROI sweep finished", slog.Int("processed", result.Processed))
	}
	return result, true
}

// Status reports whether a sweep is running and the outcome of the last one.
func (s *Scheduler) Status() domain.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SchedulerStatus{
		Running:    s.inFlight.Load(),
		LastRunAt:  s.lastRunAt,
		LastResult: s.lastResult,
	}
}
