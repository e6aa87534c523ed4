package services

import (
	"context"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccount retrieves an active account by external user id.
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)

	// ListAccounts retrieves all active accounts, newest first.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount opens an account and records its initial deposit.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error)

	// DeactivateAccount soft-deletes an account.
	DeactivateAccount(ctx context.Context, userID string, actor string) error
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
