package mapping

import (
	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/models"
)

// ToModelAccessCode converts a domain AccessCode to a model AccessCode
func ToModelAccessCode(d domain.AccessCode) models.AccessCode {
	return models.AccessCode{
		Code:              d.Code,
		Name:              d.Name,
		InitialBalance:    d.InitialBalance,
		IsUsed:            d.IsUsed,
		UsedBy:            nullString(d.UsedBy),
		UsedAt:            d.UsedAt,
		PreassignedUserID: nullString(d.PreassignedUserID),
		ExpiresAt:         d.ExpiresAt,
		CreatedAt:         d.CreatedAt,
		CreatedBy:         d.CreatedBy,
	}
}

// ToDomainAccessCode converts a model AccessCode to a domain AccessCode
func ToDomainAccessCode(m models.AccessCode) domain.AccessCode {
	return domain.AccessCode{
		Code:              m.Code,
		Name:              m.Name,
		InitialBalance:    m.InitialBalance,
		IsUsed:            m.IsUsed,
		UsedBy:            stringValue(m.UsedBy),
		UsedAt:            utcPtr(m.UsedAt),
		PreassignedUserID: stringValue(m.PreassignedUserID),
		ExpiresAt:         utcPtr(m.ExpiresAt),
		CreatedAt:         m.CreatedAt.UTC(),
		CreatedBy:         m.CreatedBy,
	}
}
