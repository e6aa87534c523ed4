package services

import (
	"context"
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ROICalculatorSvc holds the pure ROI rules.
type ROICalculatorSvc interface {
	Policy() domain.ROIPolicy
	IsDue(acc *domain.Account, now time.Time) bool
	NextAmount(acc *domain.Account) decimal.Decimal
	Now() time.Time
}

// ROIProcessorSvc pays ROI.
type ROIProcessorSvc interface {
	// ProcessOne pays one ROI cycle to a due account.
	ProcessOne(ctx context.Context, userID string, now time.Time) (*domain.Account, error)

	// ProcessSweep pays every due active account. Per-account failures are collected, never returned.
	ProcessSweep(ctx context.Context, now time.Time) domain.SweepResult
}

// ROIReporterSvc answers ROI queries.
type ROIReporterSvc interface {
	ProjectEarnings(ctx context.Context, userID string, weeks int) (*domain.EarningsProjection, error)
	DueAccounts(ctx context.Context, now time.Time) ([]domain.DueAccount, error)
}

// ROISvcFacade combines all ROI service interfaces.
type ROISvcFacade interface {
	ROICalculatorSvc
	ROIProcessorSvc
	ROIReporterSvc
}

// SweepRunnerSvc runs ROI sweeps under a single-flight guard.
type SweepRunnerSvc interface {
	// TriggerSweep runs a sweep now. ran is false when another sweep was already in flight.
	TriggerSweep(ctx context.Context) (result domain.SweepResult, ran bool)
	Status() domain.SchedulerStatus
}
