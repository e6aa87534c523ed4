package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// balanceService is the sole mutator of account balances.
type balanceService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	txManager   portsrepo.TransactionManager
}

// NewBalanceService creates a new balance service.
func NewBalanceService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade, txManager portsrepo.TransactionManager, options ...ServiceOption) portssvc.BalanceSvcFacade {
	return &balanceService{
		BaseService: newBaseService(options...),
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		txManager:   txManager,
	}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// leg is one posting against one account within a balance operation.
type leg struct {
	userID  string
	posting domain.Posting
}

// applyLegs locks every account involved, applies the postings in order and persists the
// accounts and their ledger records. It must run inside a transaction scope.
func (s *balanceService) applyLegs(ctx context.Context, legs ...leg) (map[string]domain.Account, []domain.LedgerRecord, error) {
	ids := make([]string, 0, len(legs))
	seen := make(map[string]bool, len(legs))
	for _, l := range legs {
		if !seen[l.userID] {
			seen[l.userID] = true
			ids = append(ids, l.userID)
		}
	}
	sort.Strings(ids)

	locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}

	now := s.now()
	records := make([]domain.LedgerRecord, 0, len(legs))
	for i := range legs {
		acc := locked[legs[i].userID]
		rec, err := legs[i].posting.Apply(&acc, now)
		if err != nil {
			return nil, nil, err
		}
		rec.RecordID = uuid.NewString()
		locked[acc.UserID] = acc
		records = append(records, rec)
	}

	for _, id := range ids {
		if err := s.accountRepo.UpdateAccount(ctx, locked[id]); err != nil {
			return nil, nil, fmt.Errorf("failed to update account %s: %w", id, err)
		}
	}
	if err := s.ledgerRepo.SaveRecords(ctx, records...); err != nil {
		return nil, nil, fmt.Errorf("failed to append ledger records: %w", err)
	}
	return locked, records, nil
}

// run executes legs in one bounded transaction scope.
func (s *balanceService) run(ctx context.Context, legs ...leg) (map[string]domain.Account, error) {
	var accounts map[string]domain.Account
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.txManager.RunInTx(ctx, func(ctx context.Context) error {
			var err error
			accounts, _, err = s.applyLegs(ctx, legs...)
			return err
		})
	})
	return accounts, err
}

func (s *balanceService) Post(ctx context.Context, userID string, posting domain.Posting) (*domain.Account, error) {
	accounts, err := s.run(ctx, leg{userID: userID, posting: posting})
	if err != nil {
		s.LogOutcome(ctx, err, "Posting rejected",
			slog.String("user_id", userID),
			slog.String("kind", string(posting.Kind)))
		return nil, err
	}
	acc := accounts[userID]
	s.LogInfo(ctx, "Posting applied",
		slog.String("user_id", userID),
		slog.String("kind", string(posting.Kind)),
		slog.String("balance", acc.CurrentBalance.String()))
	return &acc, nil
}

// requirePositive accepts positive amounts with at most two decimal places.
func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if !domain.IsMoneyAmount(amount) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrValidation, amount, domain.MoneyDecimals)
	}
	return nil
}

func (s *balanceService) change(ctx context.Context, req dto.BalanceChangeRequest, actor string, defaultKind domain.TransactionKind, allowed func(domain.TransactionKind) bool) (*domain.Account, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := requirePositive(req.Amount); err != nil {
		return nil, err
	}
	kind := req.Kind
	if kind == "" {
		kind = defaultKind
	}
	if !allowed(kind) {
		return nil, fmt.Errorf("%w: kind %q not allowed here", apperrors.ErrValidation, kind)
	}
	description := req.Description
	if description == "" {
		description = defaultDescription(kind)
	}
	return s.Post(ctx, req.UserID, domain.Posting{
		Kind:        kind,
		Amount:      req.Amount,
		Description: description,
		Metadata:    req.Metadata,
		Actor:       actor,
	})
}

func (s *balanceService) Credit(ctx context.Context, req dto.BalanceChangeRequest, actor string) (*domain.Account, error) {
	return s.change(ctx, req, actor, domain.AdminCredit, domain.TransactionKind.IsCredit)
}

func (s *balanceService) Debit(ctx context.Context, req dto.BalanceChangeRequest, actor string) (*domain.Account, error) {
	return s.change(ctx, req, actor, domain.AdminDebit, domain.TransactionKind.IsDebit)
}

// Transfer applies both legs in one transaction scope, so a failed credit leaves the debit undone.
func (s *balanceService) Transfer(ctx context.Context, req dto.TransferRequest, actor string) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if err := requirePositive(req.Amount); err != nil {
		return err
	}

	outDesc, inDesc := req.Description, req.Description
	if req.Description == "" {
		outDesc = fmt.Sprintf("Transfer to %s", req.ToUserID)
		inDesc = fmt.Sprintf("Transfer from %s", req.FromUserID)
	}

	_, err := s.run(ctx,
		leg{userID: req.FromUserID, posting: domain.Posting{
			Kind:        domain.TransferOut,
			Amount:      req.Amount,
			Description: outDesc,
			Metadata:    map[string]any{domain.MetaTransferTo: req.ToUserID, domain.MetaTransferType: "outgoing"},
			Actor:       actor,
		}},
		leg{userID: req.ToUserID, posting: domain.Posting{
			Kind:        domain.TransferIn,
			Amount:      req.Amount,
			Description: inDesc,
			Metadata:    map[string]any{domain.MetaTransferFrom: req.FromUserID, domain.MetaTransferType: "incoming"},
			Actor:       actor,
		}},
	)
	if err != nil {
		s.LogOutcome(ctx, err, "Transfer rejected",
			slog.String("from_user_id", req.FromUserID),
			slog.String("to_user_id", req.ToUserID))
		return err
	}
	s.LogInfo(ctx, "Transfer completed",
		slog.String("from_user_id", req.FromUserID),
		slog.String("to_user_id", req.ToUserID),
		slog.String("amount", req.Amount.String()))
	return nil
}

func (s *balanceService) Withdraw(ctx context.Context, req dto.WithdrawRequest, actor string) (*domain.Account, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := requirePositive(req.Amount); err != nil {
		return nil, err
	}
	description := "Withdrawal"
	if req.Destination != "" {
		description = fmt.Sprintf("Withdrawal to %s", req.Destination)
	}
	return s.Post(ctx, req.UserID, domain.Posting{
		Kind:        domain.Withdrawal,
		Amount:      req.Amount,
		Description: description,
		Metadata:    map[string]any{domain.MetaDestination: req.Destination},
		Actor:       actor,
		Prepare: func(acc *domain.Account, _ *domain.Posting) error {
			if !acc.CanWithdrawNow() {
				return fmt.Errorf("%w: %d of %d ROI cycles completed",
					apperrors.ErrWithdrawalLocked, acc.ROICyclesCompleted, acc.MaxROICycles)
			}
			return nil
		},
	})
}

// Reinvest folds the current balance into the ROI base. The record's amount is the folded
// difference; the balance itself is unchanged.
func (s *balanceService) Reinvest(ctx context.Context, userID string, actor string) (*domain.Account, error) {
	return s.Post(ctx, userID, domain.Posting{
		Kind:        domain.Reinvestment,
		Description: "Reinvested balance",
		Actor:       actor,
		Prepare: func(acc *domain.Account, p *domain.Posting) error {
			gain := acc.CurrentBalance.Sub(acc.InitialBalance)
			if !gain.IsPositive() {
				return fmt.Errorf("%w: nothing to reinvest", apperrors.ErrValidation)
			}
			p.Amount = gain
			p.Metadata = map[string]any{domain.MetaPreviousBase: acc.InitialBalance.String()}
			acc.InitialBalance = acc.CurrentBalance
			return nil
		},
	})
}

func (s *balanceService) GetHistory(ctx context.Context, userID string, limit int) ([]domain.LedgerRecord, error) {
	var records []domain.LedgerRecord
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.ledgerRepo.ListRecordsByUser(ctx, userID, limit)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to load history", slog.String("user_id", userID))
		return nil, err
	}
	return records, nil
}

func defaultDescription(kind domain.TransactionKind) string {
	switch kind {
	case domain.AdminCredit:
		return "Admin credit"
	case domain.AdminDebit:
		return "Admin debit"
	case domain.ROIPayment:
		return "ROI payment"
	case domain.InitialDeposit:
		return "Initial deposit"
	case domain.Withdrawal:
		return "Withdrawal"
	default:
		return string(kind)
	}
}
