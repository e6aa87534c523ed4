package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingUpdateRepo fails UpdateAccount for one user id.
type failingUpdateRepo struct {
	portsrepo.AccountRepositoryFacade
	failFor string
}

func (r *failingUpdateRepo) UpdateAccount(ctx context.Context, acc domain.Account) error {
	if acc.UserID == r.failFor {
		return errors.New("disk full")
	}
	return r.AccountRepositoryFacade.UpdateAccount(ctx, acc)
}

// cancellingRepo cancels the sweep context when the second account is locked.
type cancellingRepo struct {
	portsrepo.AccountRepositoryFacade
	cancel context.CancelFunc
	calls  atomic.Int32
}

func (r *cancellingRepo) FindAccountsByIDsForUpdate(ctx context.Context, ids []string) (map[string]domain.Account, error) {
	if r.calls.Add(1) == 2 {
		r.cancel()
		return nil, ctx.Err()
	}
	return r.AccountRepositoryFacade.FindAccountsByIDsForUpdate(ctx, ids)
}

// blockingRepo never answers a lock request before the context ends.
type blockingRepo struct {
	portsrepo.AccountRepositoryFacade
}

func (r *blockingRepo) FindAccountsByIDsForUpdate(ctx context.Context, ids []string) (map[string]domain.Account, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestROIEngine_ProcessOnePaysExactAmount(t *testing.T) {
	env := newTestEnv(t)
	env.open(t, "alice", 1000)

	due := t0.Add(week)
	acc, err := env.svc.ROI.ProcessOne(env.ctx, "alice", due)
	require.NoError(t, err)

	assert.Equal(t, "1080", acc.CurrentBalance.String())
	assert.Equal(t, "1000", acc.InitialBalance.String())
	assert.Equal(t, 1, acc.ROICyclesCompleted)
	require.NotNil(t, acc.NextROIDate)
	assert.Equal(t, due.Add(week), *acc.NextROIDate)

	latest := env.history(t, "alice")[0]
	assert.Equal(t, domain.ROIPayment, latest.Kind)
	assert.Equal(t, "80", latest.Amount.String())
	assert.Equal(t, "ROI Payment - Cycle 1", latest.Description)
	assert.Equal(t, 1, latest.Metadata[domain.MetaCycleNumber])
	assert.Equal(t, 8.0, latest.Metadata[domain.MetaROIPercentage])
	assert.Equal(t, false, latest.Metadata[domain.MetaIsAutomatic])
	assert.Equal(t, domain.SystemActor, latest.CreatedBy)
	env.requireLedgerConsistent(t, "alice")
}

func TestROIEngine_ManualActorComesFromContext(t *testing.T) {
	env := newTestEnv(t)
	env.open(t, "alice", 1000)

	ctx := middleware.WithActor(env.ctx, "admin-42")
	_, err := env.svc.ROI.ProcessOne(ctx, "alice", t0.Add(week))
	require.NoError(t, err)

	assert.Equal(t, "admin-42", env.history(t, "alice")[0].CreatedBy)
}

func TestROIEngine_AmountIsRoundedToCents(t *testing.T) {
	env := newTestEnv(t)
	acc := env.open(t, "odd", 333)

	assert.Equal(t, "26.64", env.svc.ROI.NextAmount(acc).String())
}

func TestROIEngine_CycleGating(t *testing.T) {
	env := newTestEnv(t)
	env.open(t, "alice", 1000)

	now := t0
	for cycle := 1; cycle <= 5; cycle++ {
		now = now.Add(week)
		acc, err := env.svc.ROI.ProcessOne(env.ctx, "alice", now)
		require.NoError(t, err)
		assert.Equal(t, cycle, acc.ROICyclesCompleted)
		assert.Equal(t, cycle >= 4, acc.CanWithdraw, "cycle %d", cycle)
	}
	env.requireLedgerConsistent(t, "alice")
}

func TestROIEngine_DueBoundaryIsInclusive(t *testing.T) {
	env := newTestEnv(t)
	acc := env.open(t, "alice", 1000)
	due := *acc.NextROIDate

	assert.False(t, env.svc.ROI.IsDue(acc, due.Add(-time.Nanosecond)))
	assert.True(t, env.svc.ROI.IsDue(acc, due))

	_, err := env.svc.ROI.ProcessOne(env.ctx, "alice", due.Add(-time.Second))
	assert.ErrorIs(t, err, apperrors.ErrNotDue)
	assert.Len(t, env.history(t, "alice"), 1)

	_, err = env.svc.ROI.ProcessOne(env.ctx, "alice", due)
	assert.NoError(t, err)
}

func TestROIEngine_ProcessOneRejections(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.ROI.ProcessOne(env.ctx, "ghost", t0.Add(week))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	env.open(t, "gone", 1000)
	require.NoError(t, env.svc.Account.DeactivateAccount(env.ctx, "gone", "admin"))
	_, err = env.svc.ROI.ProcessOne(env.ctx, "gone", t0.Add(week))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestROIEngine_SweepPaysBacklogOnce(t *testing.T) {
	env := newTestEnv(t)
	env.open(t, "alice", 1000)
	env.open(t, "bob", 500)

	now := t0.Add(60 * 24 * time.Hour)
	for _, id := range []string{"alice", "bob"} {
		acc := env.account(t, id)
		past := now.Add(-30 * 24 * time.Hour)
		acc.NextROIDate = &past
		require.NoError(t, env.repos.AccountRepo.UpdateAccount(env.ctx, *acc))
	}

	result := env.svc.ROI.ProcessSweep(env.ctx, now)
	assert.Equal(t, 2, result.Processed)
	assert.Empty(t, result.Errors)

	for _, id := range []string{"alice", "bob"} {
		acc := env.account(t, id)
		assert.Equal(t, 1, acc.ROICyclesCompleted)
		require.NotNil(t, acc.NextROIDate)
		assert.Equal(t, now.Add(week), *acc.NextROIDate)
		env.requireLedgerConsistent(t, id)
	}
	assert.Equal(t, "1080", env.account(t, "alice").CurrentBalance.String())
	assert.Equal(t, "540", env.account(t, "bob").CurrentBalance.String())
	assert.Equal(t, true, env.history(t, "bob")[0].Metadata[domain.MetaIsAutomatic])

	again := env.svc.ROI.ProcessSweep(env.ctx, now)
	assert.Equal(t, 0, again.Processed)
	assert.Empty(t, again.Errors)
}

func TestROIEngine_SweepIsolatesFailures(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		env := newTestEnv(t,
			withSweepConcurrency(concurrency),
			withAccountRepo(func(r portsrepo.AccountRepositoryFacade) portsrepo.AccountRepositoryFacade {
				return &failingUpdateRepo{AccountRepositoryFacade: r, failFor: "2"}
			}))
		for _, id := range []string{"1", "2", "3"} {
			env.open(t, id, 1000)
		}

		result := env.svc.ROI.ProcessSweep(env.ctx, t0.Add(week))

		assert.Equal(t, 2, result.Processed, "concurrency %d", concurrency)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "account 2")
		assert.Equal(t, "1080", env.account(t, "1").CurrentBalance.String())
		assert.Equal(t, "1000", env.account(t, "2").CurrentBalance.String())
		assert.Equal(t, 0, env.account(t, "2").ROICyclesCompleted)
		assert.Len(t, env.history(t, "2"), 1)
		assert.Equal(t, "1080", env.account(t, "3").CurrentBalance.String())
	}
}

func TestROIEngine_SweepSkipsInactiveAndNotYetDue(t *testing.T) {
	env := newTestEnv(t)
	env.open(t, "due", 1000)
	env.open(t, "gone", 1000)
	require.NoError(t, env.svc.Account.DeactivateAccount(env.ctx, "gone", "admin"))

	env.clock.Set(t0.Add(3 * 24 * time.Hour))
	env.open(t, "later", 1000)

	result := env.svc.ROI.ProcessSweep(env.ctx, t0.Add(week))
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "1000", env.account(t, "later").CurrentBalance.String())
}

func TestROIEngine_SweepStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(t, withAccountRepo(func(r portsrepo.AccountRepositoryFacade) portsrepo.AccountRepositoryFacade {
		return &cancellingRepo{AccountRepositoryFacade: r, cancel: cancel}
	}))
	for _, id := range []string{"1", "2", "3"} {
		env.open(t, id, 1000)
	}

	result := env.svc.ROI.ProcessSweep(ctx, t0.Add(week))

	assert.Equal(t, 1, result.Processed)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "account 2")
	assert.Contains(t, result.Errors[1], "sweep cancelled: 1 accounts not processed")
	assert.Equal(t, "1080", env.account(t, "1").CurrentBalance.String())
	assert.Equal(t, "1000", env.account(t, "2").CurrentBalance.String())
	assert.Equal(t, "1000", env.account(t, "3").CurrentBalance.String())
}

func TestROIEngine_StoreTimeoutIsTransient(t *testing.T) {
	env := newTestEnv(t,
		withTimeout(20*time.Millisecond),
		withAccountRepo(func(r portsrepo.AccountRepositoryFacade) portsrepo.AccountRepositoryFacade {
			return &blockingRepo{AccountRepositoryFacade: r}
		}))
	env.open(t, "alice", 1000)

	_, err := env.svc.ROI.ProcessOne(env.ctx, "alice", t0.Add(week))
	assert.ErrorIs(t, err, apperrors.ErrTransient)
}

func TestROIEngine_ManualAndSweepPayOnce(t *testing.T) {
	for i := 0; i < 20; i++ {
		env := newTestEnv(t)
		env.open(t, "alice", 1000)
		now := t0.Add(week)

		var manualPaid atomic.Bool
		var wg sync.WaitGroup
		var sweep domain.SweepResult
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := env.svc.ROI.ProcessOne(env.ctx, "alice", now); err == nil {
				manualPaid.Store(true)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrNotDue)
			}
		}()
		go func() {
			defer wg.Done()
			sweep = env.svc.ROI.ProcessSweep(env.ctx, now)
		}()
		wg.Wait()

		paid := sweep.Processed
		if manualPaid.Load() {
			paid++
		}
		require.Equal(t, 1, paid)
		assert.Empty(t, sweep.Errors)
		acc := env.account(t, "alice")
		require.Equal(t, 1, acc.ROICyclesCompleted)
		require.Equal(t, "1080", acc.CurrentBalance.String())
	}
}

func TestROIEngine_ProjectEarnings(t *testing.T) {
	env := newTestEnv(t)
	env.open(t, "alice", 1000)

	projection, err := env.svc.ROI.ProjectEarnings(env.ctx, "alice", 4)
	require.NoError(t, err)
	assert.Equal(t, "80", projection.WeeklyAmount.String())
	assert.Equal(t, "1320", projection.TotalProjected.String())
	require.Len(t, projection.Breakdown, 4)
	assert.Equal(t, "1160", projection.Breakdown[1].Total.String())

	_, err = env.svc.ROI.ProjectEarnings(env.ctx, "alice", 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = env.svc.ROI.ProjectEarnings(env.ctx, "ghost", 4)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestROIEngine_DueAccounts(t *testing.T) {
	env := newTestEnv(t)
	env.open(t, "alice", 1000)
	env.open(t, "bob", 250)

	due, err := env.svc.ROI.DueAccounts(env.ctx, t0.Add(week))
	require.NoError(t, err)
	require.Len(t, due, 2)
	amounts := map[string]string{}
	for _, d := range due {
		amounts[d.Account.UserID] = d.ROIAmount.String()
	}
	assert.Equal(t, map[string]string{"alice": "80", "bob": "20"}, amounts)

	due, err = env.svc.ROI.DueAccounts(env.ctx, t0)
	require.NoError(t, err)
	assert.Empty(t, due)
}
