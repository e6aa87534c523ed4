package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionKind is the fixed tag persisted on each ledger record.
type TransactionKind string

const (
	InitialDeposit TransactionKind = "initial_deposit"
	ROIPayment     TransactionKind = "roi_payment"
	Reinvestment   TransactionKind = "reinvestment"
	Withdrawal     TransactionKind = "withdrawal"
	AdminCredit    TransactionKind = "admin_credit"
	AdminDebit     TransactionKind = "admin_debit"
	TransferIn     TransactionKind = "transfer_in"
	TransferOut    TransactionKind = "transfer_out"
)

// TransactionKinds lists every kind in display order.
var TransactionKinds = []TransactionKind{
	InitialDeposit, ROIPayment, Reinvestment, Withdrawal,
	AdminCredit, AdminDebit, TransferIn, TransferOut,
}

// IsCredit reports whether records of this kind add to the balance.
func (k TransactionKind) IsCredit() bool {
	switch k {
	case InitialDeposit, ROIPayment, AdminCredit, TransferIn:
		return true
	}
	return false
}

// IsDebit reports whether records of this kind subtract from the balance.
func (k TransactionKind) IsDebit() bool {
	switch k {
	case Withdrawal, AdminDebit, TransferOut:
		return true
	}
	return false
}

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	return k.IsCredit() || k.IsDebit() || k == Reinvestment
}

// Delta returns the signed balance change a record of this kind and magnitude produces.
// Reinvestment moves the ROI base, not the balance, so its delta is zero.
func (k TransactionKind) Delta(amount decimal.Decimal) decimal.Decimal {
	switch {
	case k.IsCredit():
		return amount
	case k.IsDebit():
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

// MoneyDecimals is the number of decimal places every stored amount carries.
const MoneyDecimals = 2

// IsMoneyAmount reports whether amount is positive and needs no more than MoneyDecimals
// decimal places.
func IsMoneyAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(MoneyDecimals))
}

// LedgerRecord is an immutable entry describing one balance mutation.
// Amount is always a positive magnitude; the sign is implied by Kind.
type LedgerRecord struct {
	RecordID      string          `json:"recordID"`
	UserID        string          `json:"userID"`
	Kind          TransactionKind `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Description   string          `json:"description"`
	Metadata      map[string]any  `json:"metadata"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// Delta returns the signed effect of the record on the account balance.
func (r LedgerRecord) Delta() decimal.Decimal {
	return r.Kind.Delta(r.Amount)
}

// Validate checks the record is internally consistent.
func (r LedgerRecord) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown transaction kind %q", apperrors.ErrValidation, r.Kind)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if !r.BalanceAfter.Equal(r.BalanceBefore.Add(r.Delta())) {
		return fmt.Errorf("%w: balance after %s does not match before %s with delta %s",
			apperrors.ErrValidation, r.BalanceAfter, r.BalanceBefore, r.Delta())
	}
	return nil
}

// ReplayBalance sums the signed deltas of records, giving the balance they account for.
func ReplayBalance(records []LedgerRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Delta())
	}
	return total
}

// Metadata keys used on ledger records.
const (
	MetaCycleNumber   = "cycle_number"
	MetaROIPercentage = "roi_percentage"
	MetaIsAutomatic   = "is_automatic"
	MetaIsInitial     = "is_initial"
	MetaTransferTo    = "transfer_to"
	MetaTransferFrom  = "transfer_from"
	MetaTransferType  = "transfer_type"
	MetaDestination   = "destination"
	MetaPreviousBase  = "previous_initial_balance"
)
