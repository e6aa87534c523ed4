package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRecord is a row of the append-only ledger_records table.
// Metadata holds the raw jsonb document.
type LedgerRecord struct {
	RecordID      string          `db:"record_id"`
	UserID        string          `db:"user_id"`
	Kind          string          `db:"kind"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Description   string          `db:"description"`
	Metadata      []byte          `db:"metadata"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
}
