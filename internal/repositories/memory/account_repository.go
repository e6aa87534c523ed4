package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
)

// AccountRepository keeps accounts in a Store.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new repository for account data.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, exists := r.store.accounts[account.UserID]; exists {
		return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.UserID)
	}
	r.store.accounts[account.UserID] = account
	r.store.accountOrder = prepend(r.store.accountOrder, account.UserID)
	return nil
}

func (r *AccountRepository) FindAccountByID(ctx context.Context, userID string) (*domain.Account, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	acc, ok := r.store.accounts[userID]
	if !ok || !acc.IsActive {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
	}
	return &acc, nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	accounts := make([]domain.Account, 0, len(r.store.accountOrder))
	for _, id := range r.store.accountOrder {
		if acc := r.store.accounts[id]; acc.IsActive {
			accounts = append(accounts, acc)
		}
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *AccountRepository) ListDueAccounts(ctx context.Context, now time.Time) ([]domain.Account, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var due []domain.Account
	for _, acc := range r.store.accounts {
		if acc.IsActive && acc.IsROIDue(now) {
			due = append(due, acc)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextROIDate.Equal(*due[j].NextROIDate) {
			return due[i].NextROIDate.Before(*due[j].NextROIDate)
		}
		return due[i].UserID < due[j].UserID
	})
	return due, nil
}

func (r *AccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.accounts[account.UserID]; !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.UserID)
	}
	r.store.accounts[account.UserID] = account
	return nil
}

func (r *AccountRepository) DeactivateAccount(ctx context.Context, userID string, actor string, now time.Time) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	acc, ok := r.store.accounts[userID]
	if !ok || !acc.IsActive {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
	}
	acc.IsActive = false
	acc.Touch(actor, now)
	r.store.accounts[userID] = acc
	return nil
}

// FindAccountsByIDsForUpdate reads the accounts inside a transaction scope. The scope
// already holds the store lock, so there is nothing further to lock.
func (r *AccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, userIDs []string) (map[string]domain.Account, error) {
	if !r.store.inTx(ctx) {
		return nil, fmt.Errorf("FindAccountsByIDsForUpdate requires a transaction scope")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found := make(map[string]domain.Account, len(userIDs))
	for _, id := range userIDs {
		if acc, ok := r.store.accounts[id]; ok && acc.IsActive {
			found[id] = acc
		}
	}
	return found, nil
}
