package services

import (
	"context"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/dto"
)

// BalanceMutatorSvc is the only way to move an account balance. Every call runs in one
// transaction scope and appends exactly one ledger record per affected account.
type BalanceMutatorSvc interface {
	Credit(ctx context.Context, req dto.BalanceChangeRequest, actor string) (*domain.Account, error)
	Debit(ctx context.Context, req dto.BalanceChangeRequest, actor string) (*domain.Account, error)

	// Transfer debits one account and credits another atomically.
	Transfer(ctx context.Context, req dto.TransferRequest, actor string) error

	// Withdraw records an off-system payout once the withdrawal gate is open.
	Withdraw(ctx context.Context, req dto.WithdrawRequest, actor string) (*domain.Account, error)

	// Reinvest folds the current balance into the ROI base.
	Reinvest(ctx context.Context, userID string, actor string) (*domain.Account, error)

	// Post applies a prepared posting to the locked account.
	Post(ctx context.Context, userID string, posting domain.Posting) (*domain.Account, error)
}

// LedgerReaderSvc exposes account history.
type LedgerReaderSvc interface {
	GetHistory(ctx context.Context, userID string, limit int) ([]domain.LedgerRecord, error)
}

// BalanceSvcFacade combines all balance-related service interfaces.
type BalanceSvcFacade interface {
	BalanceMutatorSvc
	LedgerReaderSvc
}
