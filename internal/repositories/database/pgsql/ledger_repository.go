package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	"github.com/SscSPs/investment_bot/internal/models"
	"github.com/SscSPs/investment_bot/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// SaveRecords appends records in one batch. The seq column keeps insertion order for
// records sharing a timestamp.
func (r *PgxLedgerRepository) SaveRecords(ctx context.Context, records ...domain.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	query := `
		INSERT INTO ledger_records (record_id, user_id, kind, amount, balance_before, balance_after, description, metadata, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	batch := &pgx.Batch{}
	for _, rec := range records {
		m, err := mapping.ToModelLedgerRecord(rec)
		if err != nil {
			return err
		}
		batch.Queue(query,
			m.RecordID,
			m.UserID,
			m.Kind,
			m.Amount,
			m.BalanceBefore,
			m.BalanceAfter,
			m.Description,
			m.Metadata,
			m.CreatedAt,
			m.CreatedBy,
		)
	}

	br := r.db(ctx).SendBatch(ctx, batch)
	for _, rec := range records {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapError(ctx, fmt.Errorf("failed to insert ledger record %s: %w", rec.RecordID, err))
		}
	}
	if err := br.Close(); err != nil {
		return mapError(ctx, fmt.Errorf("failed to close ledger batch: %w", err))
	}
	return nil
}

// ListRecordsByUser retrieves an account's records, newest first.
func (r *PgxLedgerRepository) ListRecordsByUser(ctx context.Context, userID string, limit int) ([]domain.LedgerRecord, error) {
	query := `
		SELECT record_id, user_id, kind, amount, balance_before, balance_after, description, metadata, created_at, created_by
		FROM ledger_records
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(ctx, fmt.Errorf("failed to query ledger records for %s: %w", userID, err))
	}
	defer rows.Close()

	records := []domain.LedgerRecord{}
	for rows.Next() {
		var m models.LedgerRecord
		if err := rows.Scan(
			&m.RecordID,
			&m.UserID,
			&m.Kind,
			&m.Amount,
			&m.BalanceBefore,
			&m.BalanceAfter,
			&m.Description,
			&m.Metadata,
			&m.CreatedAt,
			&m.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger record row: %w", err)
		}
		rec, err := mapping.ToDomainLedgerRecord(m)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(ctx, fmt.Errorf("error iterating ledger record rows: %w", err))
	}
	return records, nil
}
