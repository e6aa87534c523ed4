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
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// MaxProjectionWeeks bounds earnings projections.
const MaxProjectionWeeks = 52

var errSweepSkipped = errors.New("skipped")

// ROIConfig configures the ROI engine.
type ROIConfig struct {
	Policy domain.ROIPolicy
	// SweepConcurrency is the number of accounts a sweep pays in parallel. Values below 1 mean 1.
	SweepConcurrency int
}

type roiEngine struct {
	BaseService
	accountRepo portsrepo.AccountReader
	balance     portssvc.BalanceMutatorSvc
	cfg         ROIConfig
}

// NewROIEngine creates the ROI engine. Payments go through the balance service so each one
// is a single ledger posting against a locked account.
func NewROIEngine(accountRepo portsrepo.AccountReader, balance portssvc.BalanceMutatorSvc, cfg ROIConfig, options ...ServiceOption) portssvc.ROISvcFacade {
	if cfg.SweepConcurrency < 1 {
		cfg.SweepConcurrency = 1
	}
	return &roiEngine{
		BaseService: newBaseService(options...),
		accountRepo: accountRepo,
		balance:     balance,
		cfg:         cfg,
	}
}

var _ portssvc.ROISvcFacade = (*roiEngine)(nil)

func (e *roiEngine) Policy() domain.ROIPolicy {
	return e.cfg.Policy
}

func (e *roiEngine) IsDue(acc *domain.Account, now time.Time) bool {
	return acc.IsROIDue(now)
}

func (e *roiEngine) NextAmount(acc *domain.Account) decimal.Decimal {
	return e.cfg.Policy.AmountFor(acc)
}

func (e *roiEngine) Now() time.Time {
	return e.now()
}

func (e *roiEngine) ProcessOne(ctx context.Context, userID string, now time.Time) (*domain.Account, error) {
	return e.processOne(ctx, userID, now, false)
}

// processOne pays one cycle. Due-ness is checked again on the locked row, so a manual
// payment racing a sweep cannot pay the same cycle twice.
func (e *roiEngine) processOne(ctx context.Context, userID string, now time.Time, automatic bool) (*domain.Account, error) {
	actor := domain.SystemActor
	if !automatic {
		if a, ok := middleware.ActorFromCtx(ctx); ok {
			actor = a
		}
	}
	policy := e.cfg.Policy

	var acc *domain.Account
	err := e.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		acc, err = e.balance.Post(ctx, userID, domain.Posting{
			Kind:  domain.ROIPayment,
			Actor: actor,
			Prepare: func(locked *domain.Account, p *domain.Posting) error {
				if !locked.IsROIDue(now) {
					if locked.NextROIDate == nil {
						return fmt.Errorf("%w: account %s has no ROI date", apperrors.ErrNotDue, userID)
					}
					return fmt.Errorf("%w: account %s next ROI at %s", apperrors.ErrNotDue, userID, locked.NextROIDate.Format(time.RFC3339))
				}
				p.Amount = policy.AmountFor(locked)
				locked.AdvanceROICycle(now, policy.Interval)
				p.Description = fmt.Sprintf("ROI Payment - Cycle %d", locked.ROICyclesCompleted)
				p.Metadata = map[string]any{
					domain.MetaCycleNumber:   locked.ROICyclesCompleted,
					domain.MetaROIPercentage: policy.Percentage.InexactFloat64(),
					domain.MetaIsAutomatic:   automatic,
				}
				return nil
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.LogInfo(ctx, "ROI paid",
		slog.String("user_id", userID),
		slog.Int("cycle", acc.ROICyclesCompleted),
		slog.Bool("can_withdraw", acc.CanWithdraw),
		slog.Bool("automatic", automatic))
	return acc, nil
}

// ProcessSweep pays every account due at now, at most SweepConcurrency at a time. A failed
// account is recorded in the result and does not stop the others. Cancelling ctx stops the
// sweep before the next account is started.
func (e *roiEngine) ProcessSweep(ctx context.Context, now time.Time) domain.SweepResult {
	result := domain.SweepResult{StartedAt: e.now(), Errors: []string{}}

	var due []domain.Account
	err := e.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		due, err = e.accountRepo.ListDueAccounts(ctx, now)
		return err
	})
	if err != nil {
		e.LogError(ctx, err, "Failed to list due accounts")
		result.Errors = append(result.Errors, fmt.Sprintf("list due accounts: %v", err))
		result.FinishedAt = e.now()
		return result
	}

	// One slot per account keeps the error list in due order whatever the parallelism.
	outcomes := make([]error, len(due))

	var g errgroup.Group
	g.SetLimit(e.cfg.SweepConcurrency)

	for i := range due {
		if ctx.Err() != nil {
			for j := i; j < len(due); j++ {
				outcomes[j] = errSweepSkipped
			}
			break
		}
		userID := due[i].UserID
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = fmt.Errorf("panic: %v", r)
				}
			}()
			if ctx.Err() != nil {
				outcomes[i] = errSweepSkipped
				return nil
			}
			_, outcomes[i] = e.processOne(ctx, userID, now, true)
			return nil
		})
	}
	_ = g.Wait()

	skipped := 0
	for i := range due {
		switch err := outcomes[i]; {
		case err == nil:
			result.Processed++
		case errors.Is(err, errSweepSkipped):
			skipped++
		case errors.Is(err, apperrors.ErrNotDue):
			// Paid by someone else between listing and locking.
			e.LogDebug(ctx, "Account no longer due", slog.String("user_id", due[i].UserID))
		default:
			e.LogError(ctx, err, "ROI payment failed", slog.String("user_id", due[i].UserID))
			result.Errors = append(result.Errors, fmt.Sprintf("account %s: %v", due[i].UserID, err))
		}
	}
	if skipped > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("sweep cancelled: %d accounts not processed: %v", skipped, ctx.Err()))
	}

	result.FinishedAt = e.now()
	e.LogInfo(ctx, "ROI sweep finished",
		slog.Int("due", len(due)),
		slog.Int("processed", result.Processed),
		slog.Int("errors", len(result.Errors)))
	return result
}

func (e *roiEngine) ProjectEarnings(ctx context.Context, userID string, weeks int) (*domain.EarningsProjection, error) {
	if weeks < 1 || weeks > MaxProjectionWeeks {
		return nil, fmt.Errorf("%w: weeks must be between 1 and %d", apperrors.ErrValidation, MaxProjectionWeeks)
	}
	var acc *domain.Account
	err := e.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		acc, err = e.accountRepo.FindAccountByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	projection := e.cfg.Policy.Project(acc, weeks)
	return &projection, nil
}

func (e *roiEngine) DueAccounts(ctx context.Context, now time.Time) ([]domain.DueAccount, error) {
	var due []domain.Account
	err := e.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		due, err = e.accountRepo.ListDueAccounts(ctx, now)
		return err
	})
	if err != nil {
		e.LogError(ctx, err, "Failed to list due accounts")
		return nil, err
	}
	out := make([]domain.DueAccount, len(due))
	for i := range due {
		out[i] = domain.DueAccount{Account: due[i], ROIAmount: e.cfg.Policy.AmountFor(&due[i])}
	}
	return out, nil
}
