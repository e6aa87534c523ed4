package mapping

import (
	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		UserID:             d.UserID,
		Name:               d.Name,
		Email:              d.Email,
		Phone:              d.Phone,
		Country:            d.Country,
		InitialBalance:     d.InitialBalance,
		CurrentBalance:     d.CurrentBalance,
		ROICyclesCompleted: d.ROICyclesCompleted,
		MaxROICycles:       d.MaxROICycles,
		NextROIDate:        d.NextROIDate,
		CanWithdraw:        d.CanWithdraw,
		IsActive:           d.IsActive,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		UserID:             m.UserID,
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Country:            m.Country,
		InitialBalance:     m.InitialBalance,
		CurrentBalance:     m.CurrentBalance,
		ROICyclesCompleted: m.ROICyclesCompleted,
		MaxROICycles:       m.MaxROICycles,
		NextROIDate:        utcPtr(m.NextROIDate),
		CanWithdraw:        m.CanWithdraw,
		IsActive:           m.IsActive,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
