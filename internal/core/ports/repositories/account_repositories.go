package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
)

// AccountReader defines read operations for account data.
// Inactive accounts are reported as apperrors.ErrNotFound and left out of listings.
type AccountReader interface {
	// FindAccountByID retrieves an active account by its external user id.
	FindAccountByID(ctx context.Context, userID string) (*domain.Account, error)

	// ListAccounts retrieves all active accounts, newest first.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// ListDueAccounts retrieves active accounts whose next ROI date is at or before now,
	// oldest due date first.
	ListDueAccounts(ctx context.Context, now time.Time) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. An existing user id, active or not, is apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's balances, cycle state and audit fields.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, userID string, actor string, now time.Time) error
}

// AccountTransactionSupport defines operations that support account transactions
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate locks the given active accounts until the surrounding
	// transaction scope ends. Locks are taken in ascending user id order. Missing ids are
	// absent from the result.
	FindAccountsByIDsForUpdate(ctx context.Context, userIDs []string) (map[string]domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
