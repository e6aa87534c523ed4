package repositories

import (
	"context"

	"github.com/SscSPs/investment_bot/internal/core/domain"
)

// LedgerReader defines read operations for ledger records.
type LedgerReader interface {
	// ListRecordsByUser retrieves an account's records, newest first. limit <= 0 returns all.
	ListRecordsByUser(ctx context.Context, userID string, limit int) ([]domain.LedgerRecord, error)
}

// LedgerWriter appends ledger records. Records are never updated or deleted.
type LedgerWriter interface {
	SaveRecords(ctx context.Context, records ...domain.LedgerRecord) error
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
