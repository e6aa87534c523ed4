package dto

import (
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceChangeRequest defines a manual credit or debit.
// Kind is optional; it defaults to admin_credit / admin_debit.
type BalanceChangeRequest struct {
	UserID      string                 `json:"userID" validate:"required"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description" validate:"max=255"`
	Kind        domain.TransactionKind `json:"kind"`
	Metadata    map[string]any         `json:"metadata"`
}

// TransferRequest moves funds between two accounts.
type TransferRequest struct {
	FromUserID  string          `json:"fromUserID" validate:"required"`
	ToUserID    string          `json:"toUserID" validate:"required,nefield=FromUserID"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=255"`
}

// WithdrawRequest records an off-system payout.
type WithdrawRequest struct {
	UserID      string          `json:"userID" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination" validate:"max=255"`
}

// LedgerRecordResponse defines the data returned for a ledger record.
type LedgerRecordResponse struct {
	RecordID      string                 `json:"recordID"`
	UserID        string                 `json:"userID"`
	Kind          domain.TransactionKind `json:"kind"`
	Amount        decimal.Decimal        `json:"amount"`
	BalanceBefore decimal.Decimal        `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal        `json:"balanceAfter"`
	Description   string                 `json:"description"`
	Metadata      map[string]any         `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	CreatedBy     string                 `json:"createdBy"`
}

// ToLedgerRecordResponse converts a domain.LedgerRecord to its DTO.
func ToLedgerRecordResponse(rec *domain.LedgerRecord) LedgerRecordResponse {
	return LedgerRecordResponse{
		RecordID:      rec.RecordID,
		UserID:        rec.UserID,
		Kind:          rec.Kind,
		Amount:        rec.Amount,
		BalanceBefore: rec.BalanceBefore,
		BalanceAfter:  rec.BalanceAfter,
		Description:   rec.Description,
		Metadata:      rec.Metadata,
		CreatedAt:     rec.CreatedAt,
		CreatedBy:     rec.CreatedBy,
	}
}

// ListLedgerRecordsResponse wraps an account's history, newest first.
type ListLedgerRecordsResponse struct {
	Records []LedgerRecordResponse `json:"records"`
}

// ToListLedgerRecordsResponse converts records to the list DTO.
func ToListLedgerRecordsResponse(records []domain.LedgerRecord) ListLedgerRecordsResponse {
	res := ListLedgerRecordsResponse{Records: make([]LedgerRecordResponse, len(records))}
	for i := range records {
		res.Records[i] = ToLedgerRecordResponse(&records[i])
	}
	return res
}
