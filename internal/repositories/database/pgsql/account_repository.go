package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	"github.com/SscSPs/investment_bot/internal/models"
	"github.com/SscSPs/investment_bot/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `user_id, name, email, phone, country, initial_balance, current_balance,
	roi_cycles_completed, max_roi_cycles, next_roi_date, can_withdraw, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.UserID,
		&m.Name,
		&m.Email,
		&m.Phone,
		&m.Country,
		&m.InitialBalance,
		&m.CurrentBalance,
		&m.ROICyclesCompleted,
		&m.MaxROICycles,
		&m.NextROIDate,
		&m.CanWithdraw,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(ctx, fmt.Errorf("error iterating account rows: %w", err))
	}
	return accounts, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`

	_, err := r.db(ctx).Exec(ctx, query,
		m.UserID,
		m.Name,
		m.Email,
		m.Phone,
		m.Country,
		m.InitialBalance,
		m.CurrentBalance,
		m.ROICyclesCompleted,
		m.MaxROICycles,
		m.NextROIDate,
		m.CanWithdraw,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.UserID)
		}
		return mapError(ctx, fmt.Errorf("failed to save account %s: %w", m.UserID, err))
	}
	return nil
}

// FindAccountByID retrieves an active account by its user id.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, userID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND is_active = TRUE;`

	acc, err := scanAccount(r.db(ctx).QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
		}
		return nil, mapError(ctx, fmt.Errorf("failed to find account by ID %s: %w", userID, err))
	}
	return &acc, nil
}

// ListAccounts retrieves all active accounts, newest first.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE is_active = TRUE
		ORDER BY created_at DESC, user_id;`

	accounts, err := r.queryAccounts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// ListDueAccounts retrieves active accounts due at now, oldest due date first.
func (r *PgxAccountRepository) ListDueAccounts(ctx context.Context, now time.Time) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE is_active = TRUE AND next_roi_date IS NOT NULL AND next_roi_date <= $1
		ORDER BY next_roi_date, user_id COLLATE "C";`

	accounts, err := r.queryAccounts(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount writes back the mutable columns of an account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET name = $2, email = $3, phone = $4, country = $5,
			initial_balance = $6, current_balance = $7,
			roi_cycles_completed = $8, max_roi_cycles = $9, next_roi_date = $10,
			can_withdraw = $11, is_active = $12,
			last_updated_at = $13, last_updated_by = $14
		WHERE user_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		m.UserID,
		m.Name,
		m.Email,
		m.Phone,
		m.Country,
		m.InitialBalance,
		m.CurrentBalance,
		m.ROICyclesCompleted,
		m.MaxROICycles,
		m.NextROIDate,
		m.CanWithdraw,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(ctx, fmt.Errorf("failed to update account %s: %w", m.UserID, err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, m.UserID)
	}
	return nil
}

// DeactivateAccount marks an active account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, userID string, actor string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE user_id = $1 AND is_active = TRUE;
	`
	tag, err := r.db(ctx).Exec(ctx, query, userID, now, actor)
	if err != nil {
		return mapError(ctx, fmt.Errorf("failed to deactivate account %s: %w", userID, err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
	}
	return nil
}

// FindAccountsByIDsForUpdate locks the given active accounts in user id order.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, userIDs []string) (map[string]domain.Account, error) {
	tx, err := r.tx(ctx, "FindAccountsByIDsForUpdate")
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE user_id = ANY($1) AND is_active = TRUE
		ORDER BY user_id COLLATE "C"
		FOR UPDATE;`

	rows, err := tx.Query(ctx, query, userIDs)
	if err != nil {
		return nil, mapError(ctx, fmt.Errorf("failed to lock accounts: %w", err))
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account, len(userIDs))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during lock: %w", err)
		}
		accountsMap[acc.UserID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(ctx, fmt.Errorf("error iterating locked account rows: %w", err))
	}
	return accountsMap, nil
}
