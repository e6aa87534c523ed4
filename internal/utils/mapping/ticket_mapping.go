package mapping

import (
	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/models"
)

// ToModelSupportTicket converts a domain SupportTicket to a model SupportTicket
func ToModelSupportTicket(d domain.SupportTicket) models.SupportTicket {
	return models.SupportTicket{
		TicketID:      d.TicketID,
		UserID:        d.UserID,
		Message:       d.Message,
		Status:        string(d.Status),
		AdminResponse: nullString(d.AdminResponse),
		RespondedBy:   nullString(d.RespondedBy),
		RespondedAt:   d.RespondedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// ToDomainSupportTicket converts a model SupportTicket to a domain SupportTicket
func ToDomainSupportTicket(m models.SupportTicket) domain.SupportTicket {
	return domain.SupportTicket{
		TicketID:      m.TicketID,
		UserID:        m.UserID,
		Message:       m.Message,
		Status:        domain.TicketStatus(m.Status),
		AdminResponse: stringValue(m.AdminResponse),
		RespondedBy:   stringValue(m.RespondedBy),
		RespondedAt:   utcPtr(m.RespondedAt),
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}
