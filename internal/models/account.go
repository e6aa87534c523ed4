package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	UserID             string          `db:"user_id"`
	Name               string          `db:"name"`
	Email              string          `db:"email"`
	Phone              string          `db:"phone"`
	Country            string          `db:"country"`
	InitialBalance     decimal.Decimal `db:"initial_balance"`
	CurrentBalance     decimal.Decimal `db:"current_balance"`
	ROICyclesCompleted int             `db:"roi_cycles_completed"`
	MaxROICycles       int             `db:"max_roi_cycles"`
	NextROIDate        *time.Time      `db:"next_roi_date"` // Nullable
	CanWithdraw        bool            `db:"can_withdraw"`
	IsActive           bool            `db:"is_active"`
	AuditFields
}
