package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/core/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/SscSPs/investment_bot/internal/platform/config"
	"github.com/SscSPs/investment_bot/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const week = 7 * 24 * time.Hour

var t0 = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func testConfig() *config.Config {
	return &config.Config{
		ROIPercentage:       decimal.NewFromInt(8),
		ROICyclesRequired:   4,
		ROIInterval:         week,
		ROISweepConcurrency: 1,
	}
}

// testEnv is a service container over a memory store with a controllable clock.
type testEnv struct {
	store *memory.Store
	repos portsrepo.RepositoryProvider
	clock *fakeClock
	svc   *portssvc.ServiceContainer
	ctx   context.Context
}

type envOption func(cfg *config.Config, repos *portsrepo.RepositoryProvider, opts *[]services.ServiceOption)

func withAccountRepo(wrap func(portsrepo.AccountRepositoryFacade) portsrepo.AccountRepositoryFacade) envOption {
	return func(_ *config.Config, repos *portsrepo.RepositoryProvider, _ *[]services.ServiceOption) {
		repos.AccountRepo = wrap(repos.AccountRepo)
	}
}

func withSweepConcurrency(n int) envOption {
	return func(cfg *config.Config, _ *portsrepo.RepositoryProvider, _ *[]services.ServiceOption) {
		cfg.ROISweepConcurrency = n
	}
}

func withTimeout(d time.Duration) envOption {
	return func(_ *config.Config, _ *portsrepo.RepositoryProvider, opts *[]services.ServiceOption) {
		*opts = append(*opts, services.WithOperationTimeout(d))
	}
}

func newTestEnv(t *testing.T, options ...envOption) *testEnv {
	t.Helper()
	store := memory.NewStore()
	repos := memory.NewRepositoryProvider(store)
	clock := newFakeClock(t0)
	cfg := testConfig()
	opts := []services.ServiceOption{services.WithClock(clock.Now)}
	for _, o := range options {
		o(cfg, &repos, &opts)
	}
	return &testEnv{
		store: store,
		repos: repos,
		clock: clock,
		svc:   services.NewServiceContainer(cfg, repos, opts...),
		ctx:   context.Background(),
	}
}

func (e *testEnv) open(t *testing.T, userID string, initial int64) *domain.Account {
	t.Helper()
	acc, err := e.svc.Account.CreateAccount(e.ctx, dto.CreateAccountRequest{
		UserID:         userID,
		Name:           "Investor " + userID,
		InitialBalance: decimal.NewFromInt(initial),
	}, "admin")
	require.NoError(t, err)
	return acc
}

func (e *testEnv) account(t *testing.T, userID string) *domain.Account {
	t.Helper()
	acc, err := e.svc.Account.GetAccount(e.ctx, userID)
	require.NoError(t, err)
	return acc
}

func (e *testEnv) history(t *testing.T, userID string) []domain.LedgerRecord {
	t.Helper()
	records, err := e.svc.Balance.GetHistory(e.ctx, userID, 0)
	require.NoError(t, err)
	return records
}

// requireLedgerConsistent checks the balance equals the replayed ledger and every record is well formed.
func (e *testEnv) requireLedgerConsistent(t *testing.T, userID string) {
	t.Helper()
	acc := e.account(t, userID)
	records := e.history(t, userID)
	for _, rec := range records {
		require.NoError(t, rec.Validate())
	}
	require.True(t, domain.ReplayBalance(records).Equal(acc.CurrentBalance),
		"balance %s, ledger replays to %s", acc.CurrentBalance, domain.ReplayBalance(records))
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decimal0() decimal.Decimal {
	return decimal.Zero
}
