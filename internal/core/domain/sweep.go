package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SweepResult is the outcome of one ROI sweep.
// Errors holds one entry per failed account in the form "account <id>: <cause>".
type SweepResult struct {
	Processed  int       `json:"processedCount"`
	Errors     []string  `json:"errors"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// DueAccount pairs an account that is owed ROI with the amount it would be paid.
type DueAccount struct {
	Account   Account         `json:"account"`
	ROIAmount decimal.Decimal `json:"roiAmount"`
}

// SchedulerStatus reports what the ROI scheduler is doing.
type SchedulerStatus struct {
	Running    bool         `json:"running"`
	LastRunAt  *time.Time   `json:"lastRunAt,omitempty"`
	LastResult *SweepResult `json:"lastResult,omitempty"`
}
