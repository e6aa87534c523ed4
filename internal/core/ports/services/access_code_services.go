package services

import (
	"context"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/dto"
)

// AccessCodeSvcFacade manages access codes and their redemption.
type AccessCodeSvcFacade interface {
	CreateAccessCode(ctx context.Context, req dto.CreateAccessCodeRequest, actor string) (*domain.AccessCode, error)
	GetAccessCode(ctx context.Context, code string) (*domain.AccessCode, error)
	ListAccessCodes(ctx context.Context) ([]domain.AccessCode, error)

	// RedeemAccessCode consumes the code and opens the caller's account in one transaction scope.
	RedeemAccessCode(ctx context.Context, req dto.RedeemAccessCodeRequest) (*domain.Account, error)
}
