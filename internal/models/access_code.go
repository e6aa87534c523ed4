package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccessCode is a row of the access_codes table. Empty strings are stored as NULL.
type AccessCode struct {
	Code              string          `db:"code"`
	Name              string          `db:"name"`
	InitialBalance    decimal.Decimal `db:"initial_balance"`
	IsUsed            bool            `db:"is_used"`
	UsedBy            *string         `db:"used_by"`
	UsedAt            *time.Time      `db:"used_at"`
	PreassignedUserID *string         `db:"preassigned_user_id"`
	ExpiresAt         *time.Time      `db:"expires_at"`
	CreatedAt         time.Time       `db:"created_at"`
	CreatedBy         string          `db:"created_by"`
}
