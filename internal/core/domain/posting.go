package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Posting describes one balance mutation to apply to a locked account.
type Posting struct {
	Kind        TransactionKind
	Amount      decimal.Decimal
	Description string
	Metadata    map[string]any
	Actor       string

	// Prepare, if set, runs against the locked account before the balance is moved.
	// It may reject the posting or fill in Amount, Description and Metadata, and it may
	// mutate non-balance account fields that must change in the same write.
	Prepare func(acc *Account, p *Posting) error
}

// Apply moves the account balance according to the posting and returns the ledger record
// describing the change. acc is modified in place; the caller persists both.
func (p *Posting) Apply(acc *Account, now time.Time) (LedgerRecord, error) {
	if p.Prepare != nil {
		if err := p.Prepare(acc, p); err != nil {
			return LedgerRecord{}, err
		}
	}
	if !p.Kind.Valid() {
		return LedgerRecord{}, fmt.Errorf("%w: unknown transaction kind %q", apperrors.ErrValidation, p.Kind)
	}
	if !p.Amount.IsPositive() {
		return LedgerRecord{}, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	before := acc.CurrentBalance
	after := before.Add(p.Kind.Delta(p.Amount))
	if after.IsNegative() {
		return LedgerRecord{}, fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, before, p.Amount)
	}

	acc.CurrentBalance = after
	actor := p.Actor
	if actor == "" {
		actor = SystemActor
	}
	acc.Touch(actor, now)

	return LedgerRecord{
		UserID:        acc.UserID,
		Kind:          p.Kind,
		Amount:        p.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   p.Description,
		Metadata:      p.Metadata,
		CreatedAt:     now,
		CreatedBy:     actor,
	}, nil
}
