package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/SscSPs/investment_bot/internal/utils"
)

// accessCodeBytes is the entropy of generated codes; they print as 8 hex characters.
const accessCodeBytes = 4

type accessCodeService struct {
	BaseService
	codeRepo  portsrepo.AccessCodeRepositoryFacade
	txManager portsrepo.TransactionManager
	opener    accountOpener
}

// NewAccessCodeService creates a new access code service.
func NewAccessCodeService(codeRepo portsrepo.AccessCodeRepositoryFacade, accountRepo portsrepo.AccountWriter, ledgerRepo portsrepo.LedgerWriter, txManager portsrepo.TransactionManager, policy domain.ROIPolicy, options ...ServiceOption) portssvc.AccessCodeSvcFacade {
	return &accessCodeService{
		BaseService: newBaseService(options...),
		codeRepo:    codeRepo,
		txManager:   txManager,
		opener:      accountOpener{accountRepo: accountRepo, ledgerRepo: ledgerRepo, policy: policy},
	}
}

var _ portssvc.AccessCodeSvcFacade = (*accessCodeService)(nil)

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *accessCodeService) CreateAccessCode(ctx context.Context, req dto.CreateAccessCodeRequest, actor string) (*domain.AccessCode, error) {
	req.Code = normalizeCode(req.Code)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := requirePositive(req.InitialBalance); err != nil {
		return nil, err
	}
	now := s.now()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: expiry must be in the future", apperrors.ErrValidation)
	}

	code := req.Code
	if code == "" {
		generated, err := utils.GenerateAccessCode(accessCodeBytes)
		if err != nil {
			s.LogError(ctx, err, "Failed to generate access code")
			return nil, apperrors.NewAppError(500, "failed to generate access code", err)
		}
		code = generated
	}

	accessCode := domain.AccessCode{
		Code:              code,
		Name:              req.Name,
		InitialBalance:    req.InitialBalance,
		PreassignedUserID: req.PreassignedUserID,
		ExpiresAt:         req.ExpiresAt,
		CreatedAt:         now,
		CreatedBy:         actor,
	}
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.codeRepo.SaveAccessCode(ctx, accessCode)
	})
	if err != nil {
		s.LogOutcome(ctx, err, "Failed to create access code", slog.String("code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Access code created",
		slog.String("code", code),
		slog.String("initial_balance", accessCode.InitialBalance.String()))
	return &accessCode, nil
}

func (s *accessCodeService) GetAccessCode(ctx context.Context, code string) (*domain.AccessCode, error) {
	var found *domain.AccessCode
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		found, err = s.codeRepo.FindAccessCode(ctx, normalizeCode(code))
		return err
	})
	return found, err
}

func (s *accessCodeService) ListAccessCodes(ctx context.Context) ([]domain.AccessCode, error) {
	var codes []domain.AccessCode
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		codes, err = s.codeRepo.ListAccessCodes(ctx)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list access codes")
		return nil, err
	}
	return codes, nil
}

// RedeemAccessCode locks the code, opens the account and consumes the code in one scope.
// If the account cannot be opened the code stays unused.
func (s *accessCodeService) RedeemAccessCode(ctx context.Context, req dto.RedeemAccessCodeRequest) (*domain.Account, error) {
	req.Code = normalizeCode(req.Code)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var acc *domain.Account
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.txManager.RunInTx(ctx, func(ctx context.Context) error {
			code, err := s.codeRepo.FindAccessCodeForUpdate(ctx, req.Code)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return fmt.Errorf("%w: %s", apperrors.ErrInvalidCode, req.Code)
				}
				return err
			}

			now := s.now()
			if err := code.Use(req.UserID, now); err != nil {
				return err
			}

			name := req.Name
			if name == "" {
				name = code.Name
			}
			acc, err = s.opener.open(ctx, openRequest{
				userID:          req.UserID,
				name:            name,
				email:           req.Email,
				phone:           req.Phone,
				country:         req.Country,
				initialBalance:  code.InitialBalance,
				depositMetadata: map[string]any{"access_code": code.Code},
				description:     fmt.Sprintf("Initial deposit via access code %s", code.Code),
			}, req.UserID, now)
			if err != nil {
				return err
			}
			return s.codeRepo.UpdateAccessCode(ctx, *code)
		})
	})
	if err != nil {
		s.LogOutcome(ctx, err, "Access code redemption failed",
			slog.String("code", req.Code),
			slog.String("user_id", req.UserID))
		return nil, err
	}

	s.LogInfo(ctx, "Access code redeemed",
		slog.String("code", req.Code),
		slog.String("user_id", acc.UserID))
	return acc, nil
}
