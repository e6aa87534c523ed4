package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/models"
)

// ToModelLedgerRecord converts a domain LedgerRecord to a model LedgerRecord.
// Nil metadata is stored as an empty object.
func ToModelLedgerRecord(d domain.LedgerRecord) (models.LedgerRecord, error) {
	meta := d.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return models.LedgerRecord{}, fmt.Errorf("failed to encode metadata of record %s: %w", d.RecordID, err)
	}
	return models.LedgerRecord{
		RecordID:      d.RecordID,
		UserID:        d.UserID,
		Kind:          string(d.Kind),
		Amount:        d.Amount,
		BalanceBefore: d.BalanceBefore,
		BalanceAfter:  d.BalanceAfter,
		Description:   d.Description,
		Metadata:      raw,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
	}, nil
}

// ToDomainLedgerRecord converts a model LedgerRecord to a domain LedgerRecord
func ToDomainLedgerRecord(m models.LedgerRecord) (domain.LedgerRecord, error) {
	meta := map[string]any{}
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &meta); err != nil {
			return domain.LedgerRecord{}, fmt.Errorf("failed to decode metadata of record %s: %w", m.RecordID, err)
		}
	}
	return domain.LedgerRecord{
		RecordID:      m.RecordID,
		UserID:        m.UserID,
		Kind:          domain.TransactionKind(m.Kind),
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		Description:   m.Description,
		Metadata:      meta,
		CreatedAt:     m.CreatedAt.UTC(),
		CreatedBy:     m.CreatedBy,
	}, nil
}
