package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
)

// LedgerRepository keeps the append-only ledger in a Store.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new repository for ledger records.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

func (r *LedgerRepository) SaveRecords(ctx context.Context, records ...domain.LedgerRecord) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	for _, rec := range records {
		if rec.RecordID == "" {
			return fmt.Errorf("%w: ledger record id is required", apperrors.ErrValidation)
		}
		rec.Metadata = cloneMetadata(rec.Metadata)
		r.store.records = append(r.store.records, rec)
	}
	return nil
}

func (r *LedgerRepository) ListRecordsByUser(ctx context.Context, userID string, limit int) ([]domain.LedgerRecord, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var out []domain.LedgerRecord
	for i := len(r.store.records) - 1; i >= 0; i-- {
		rec := r.store.records[i]
		if rec.UserID != userID {
			continue
		}
		rec.Metadata = cloneMetadata(rec.Metadata)
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
