package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	"github.com/SscSPs/investment_bot/internal/models"
	"github.com/SscSPs/investment_bot/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accessCodeColumns = `code, name, initial_balance, is_used, used_by, used_at,
	preassigned_user_id, expires_at, created_at, created_by`

type PgxAccessCodeRepository struct {
	BaseRepository
}

func newPgxAccessCodeRepository(pool *pgxpool.Pool) *PgxAccessCodeRepository {
	return &PgxAccessCodeRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccessCodeRepositoryFacade = (*PgxAccessCodeRepository)(nil)

func scanAccessCode(row pgx.Row) (domain.AccessCode, error) {
	var m models.AccessCode
	err := row.Scan(
		&m.Code,
		&m.Name,
		&m.InitialBalance,
		&m.IsUsed,
		&m.UsedBy,
		&m.UsedAt,
		&m.PreassignedUserID,
		&m.ExpiresAt,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	if err != nil {
		return domain.AccessCode{}, err
	}
	return mapping.ToDomainAccessCode(m), nil
}

func (r *PgxAccessCodeRepository) SaveAccessCode(ctx context.Context, code domain.AccessCode) error {
	m := mapping.ToModelAccessCode(code)
	query := `INSERT INTO access_codes (` + accessCodeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	_, err := r.db(ctx).Exec(ctx, query,
		m.Code,
		m.Name,
		m.InitialBalance,
		m.IsUsed,
		m.UsedBy,
		m.UsedAt,
		m.PreassignedUserID,
		m.ExpiresAt,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: access code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return mapError(ctx, fmt.Errorf("failed to save access code %s: %w", m.Code, err))
	}
	return nil
}

// UpdateAccessCode records a redemption. Codes are otherwise immutable.
func (r *PgxAccessCodeRepository) UpdateAccessCode(ctx context.Context, code domain.AccessCode) error {
	m := mapping.ToModelAccessCode(code)
	query := `UPDATE access_codes SET is_used = $2, used_by = $3, used_at = $4 WHERE code = $1;`

	tag, err := r.db(ctx).Exec(ctx, query, m.Code, m.IsUsed, m.UsedBy, m.UsedAt)
	if err != nil {
		return mapError(ctx, fmt.Errorf("failed to update access code %s: %w", m.Code, err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: access code %s", apperrors.ErrNotFound, m.Code)
	}
	return nil
}

func (r *PgxAccessCodeRepository) findOne(ctx context.Context, q querier, query, code string) (*domain.AccessCode, error) {
	c, err := scanAccessCode(q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: access code %s", apperrors.ErrNotFound, code)
		}
		return nil, mapError(ctx, fmt.Errorf("failed to find access code %s: %w", code, err))
	}
	return &c, nil
}

func (r *PgxAccessCodeRepository) FindAccessCode(ctx context.Context, code string) (*domain.AccessCode, error) {
	query := `SELECT ` + accessCodeColumns + ` FROM access_codes WHERE code = $1;`
	return r.findOne(ctx, r.db(ctx), query, code)
}

func (r *PgxAccessCodeRepository) FindAccessCodeForUpdate(ctx context.Context, code string) (*domain.AccessCode, error) {
	tx, err := r.tx(ctx, "FindAccessCodeForUpdate")
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + accessCodeColumns + ` FROM access_codes WHERE code = $1 FOR UPDATE;`
	return r.findOne(ctx, tx, query, code)
}

func (r *PgxAccessCodeRepository) ListAccessCodes(ctx context.Context) ([]domain.AccessCode, error) {
	query := `SELECT ` + accessCodeColumns + ` FROM access_codes ORDER BY created_at DESC, code;`

	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, mapError(ctx, fmt.Errorf("failed to query access codes: %w", err))
	}
	defer rows.Close()

	codes := []domain.AccessCode{}
	for rows.Next() {
		c, err := scanAccessCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access code row: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(ctx, fmt.Errorf("error iterating access code rows: %w", err))
	}
	return codes, nil
}
