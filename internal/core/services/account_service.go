package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountOpener creates an account together with its initial deposit record.
// Callers run it inside a transaction scope.
type accountOpener struct {
	accountRepo portsrepo.AccountWriter
	ledgerRepo  portsrepo.LedgerWriter
	policy      domain.ROIPolicy
}

type openRequest struct {
	userID, name, email, phone, country string
	initialBalance                      decimal.Decimal
	depositMetadata                     map[string]any
	description                         string
}

func (o accountOpener) open(ctx context.Context, req openRequest, actor string, now time.Time) (*domain.Account, error) {
	if err := requirePositive(req.initialBalance); err != nil {
		return nil, err
	}
	next := now.Add(o.policy.Interval)
	acc := domain.Account{
		UserID:         req.userID,
		Name:           req.name,
		Email:          req.email,
		Phone:          req.phone,
		Country:        req.country,
		InitialBalance: req.initialBalance,
		CurrentBalance: decimal.Zero,
		MaxROICycles:   o.policy.MaxCycles,
		NextROIDate:    &next,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt: now,
			CreatedBy: actor,
		},
	}

	metadata := map[string]any{domain.MetaIsInitial: true}
	for k, v := range req.depositMetadata {
		metadata[k] = v
	}
	description := req.description
	if description == "" {
		description = defaultDescription(domain.InitialDeposit)
	}
	deposit := domain.Posting{
		Kind:        domain.InitialDeposit,
		Amount:      req.initialBalance,
		Description: description,
		Metadata:    metadata,
		Actor:       actor,
	}
	rec, err := deposit.Apply(&acc, now)
	if err != nil {
		return nil, err
	}
	rec.RecordID = uuid.NewString()

	if err := o.accountRepo.SaveAccount(ctx, acc); err != nil {
		return nil, err
	}
	if err := o.ledgerRepo.SaveRecords(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record initial deposit: %w", err)
	}
	return &acc, nil
}

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	txManager   portsrepo.TransactionManager
	opener      accountOpener
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerWriter, txManager portsrepo.TransactionManager, policy domain.ROIPolicy, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(options...),
		accountRepo: accountRepo,
		txManager:   txManager,
		opener:      accountOpener{accountRepo: accountRepo, ledgerRepo: ledgerRepo, policy: policy},
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var acc *domain.Account
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.txManager.RunInTx(ctx, func(ctx context.Context) error {
			var err error
			acc, err = s.opener.open(ctx, openRequest{
				userID:         req.UserID,
				name:           req.Name,
				email:          req.Email,
				phone:          req.Phone,
				country:        req.Country,
				initialBalance: req.InitialBalance,
			}, actor, s.now())
			return err
		})
	})
	if err != nil {
		s.LogOutcome(ctx, err, "Failed to create account", slog.String("user_id", req.UserID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("user_id", acc.UserID),
		slog.String("initial_balance", acc.InitialBalance.String()))
	return acc, nil
}

func (s *accountService) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	var acc *domain.Account
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		acc, err = s.accountRepo.FindAccountByID(ctx, userID)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("user_id", userID))
		}
		return nil, err
	}
	return acc, nil
}

func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		accounts, err = s.accountRepo.ListAccounts(ctx)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, userID string, actor string) error {
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.accountRepo.DeactivateAccount(ctx, userID, actor, s.now())
	})
	if err != nil {
		s.LogOutcome(ctx, err, "Failed to deactivate account", slog.String("user_id", userID))
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("user_id", userID), slog.String("actor", actor))
	return nil
}
