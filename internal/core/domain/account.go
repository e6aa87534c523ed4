package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMaxROICycles is the number of ROI cycles an account must complete before withdrawal unlocks.
const DefaultMaxROICycles = 4

// Account represents a user's investment position.
// CurrentBalance only moves through ledger postings; InitialBalance is the ROI base and
// only changes on reinvestment.
type Account struct {
	UserID             string          `json:"userID"` // External identifier (chat user id), unique
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	Country            string          `json:"country"`
	InitialBalance     decimal.Decimal `json:"initialBalance"`
	CurrentBalance     decimal.Decimal `json:"currentBalance"`
	ROICyclesCompleted int             `json:"roiCyclesCompleted"`
	MaxROICycles       int             `json:"maxROICycles"`
	NextROIDate        *time.Time      `json:"nextROIDate"` // nil means never due
	CanWithdraw        bool            `json:"canWithdraw"` // Latched by AdvanceROICycle, never reset
	IsActive           bool            `json:"isActive"`    // Soft delete flag
	AuditFields
}

// IsROIDue reports whether ROI may be paid at now. The boundary is inclusive.
func (a *Account) IsROIDue(now time.Time) bool {
	if a.NextROIDate == nil {
		return false
	}
	return !now.Before(*a.NextROIDate)
}

// CanWithdrawNow reports whether the withdrawal gate is open.
func (a *Account) CanWithdrawNow() bool {
	return a.ROICyclesCompleted >= a.MaxROICycles && a.CanWithdraw
}

// CyclesRemaining returns how many ROI cycles are left before withdrawal unlocks.
func (a *Account) CyclesRemaining() int {
	remaining := a.MaxROICycles - a.ROICyclesCompleted
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AdvanceROICycle records a completed ROI cycle: the counter moves forward, the next due
// date is set one interval after now, and once the threshold is reached CanWithdraw latches.
// Balances are not touched here; the ROI credit is a separate ledger posting.
func (a *Account) AdvanceROICycle(now time.Time, interval time.Duration) {
	a.ROICyclesCompleted++
	next := now.Add(interval)
	a.NextROIDate = &next
	if a.ROICyclesCompleted >= a.MaxROICycles {
		a.CanWithdraw = true
	}
}

// ROIPolicy holds the configured accrual parameters.
type ROIPolicy struct {
	Percentage decimal.Decimal
	Interval   time.Duration
	MaxCycles  int
}

// DefaultROIPolicy returns 8% every 7 days with withdrawal after 4 cycles.
func DefaultROIPolicy() ROIPolicy {
	return ROIPolicy{
		Percentage: decimal.NewFromInt(8),
		Interval:   7 * 24 * time.Hour,
		MaxCycles:  DefaultMaxROICycles,
	}
}

// AmountFor returns the ROI payable on the account. It is always computed from
// InitialBalance, so ROI does not compound unless the account reinvests.
func (p ROIPolicy) AmountFor(a *Account) decimal.Decimal {
	return a.InitialBalance.Mul(p.Percentage).Div(decimal.NewFromInt(100)).Round(MoneyDecimals)
}

// ProjectedWeek is one row of an earnings projection.
type ProjectedWeek struct {
	Week   int             `json:"week"`
	Amount decimal.Decimal `json:"amount"`
	Total  decimal.Decimal `json:"total"`
}

// EarningsProjection is a straight-line forecast of future ROI credits.
type EarningsProjection struct {
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	WeeklyAmount   decimal.Decimal `json:"weeklyAmount"`
	TotalProjected decimal.Decimal `json:"totalProjected"`
	Breakdown      []ProjectedWeek `json:"breakdown"`
}

// Project forecasts the account balance over the given number of weeks.
func (p ROIPolicy) Project(a *Account, weeks int) EarningsProjection {
	weekly := p.AmountFor(a)
	total := a.CurrentBalance
	breakdown := make([]ProjectedWeek, 0, weeks)
	for week := 1; week <= weeks; week++ {
		total = total.Add(weekly)
		breakdown = append(breakdown, ProjectedWeek{Week: week, Amount: weekly, Total: total})
	}
	return EarningsProjection{
		CurrentBalance: a.CurrentBalance,
		WeeklyAmount:   weekly,
		TotalProjected: total,
		Breakdown:      breakdown,
	}
}
