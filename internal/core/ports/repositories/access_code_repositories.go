package repositories

import (
	"context"

	"github.com/SscSPs/investment_bot/internal/core/domain"
)

// AccessCodeReader defines read operations for access codes.
type AccessCodeReader interface {
	FindAccessCode(ctx context.Context, code string) (*domain.AccessCode, error)

	// ListAccessCodes retrieves all codes, newest first.
	ListAccessCodes(ctx context.Context) ([]domain.AccessCode, error)
}

// AccessCodeWriter defines write operations for access codes.
type AccessCodeWriter interface {
	// SaveAccessCode persists a new code. An existing code is apperrors.ErrDuplicate.
	SaveAccessCode(ctx context.Context, code domain.AccessCode) error

	UpdateAccessCode(ctx context.Context, code domain.AccessCode) error
}

// AccessCodeTransactionSupport defines operations that support redemption transactions.
type AccessCodeTransactionSupport interface {
	// FindAccessCodeForUpdate locks the code until the surrounding transaction scope ends.
	FindAccessCodeForUpdate(ctx context.Context, code string) (*domain.AccessCode, error)
}

// AccessCodeRepositoryFacade combines all access-code repository interfaces.
type AccessCodeRepositoryFacade interface {
	AccessCodeReader
	AccessCodeWriter
	AccessCodeTransactionSupport
}
