package repositories

import (
	"context"

	"github.com/SscSPs/investment_bot/internal/core/domain"
)

// TicketReader defines read operations for support tickets.
type TicketReader interface {
	FindTicketByID(ctx context.Context, ticketID string) (*domain.SupportTicket, error)

	// ListTickets retrieves tickets newest first, optionally filtered by status.
	ListTickets(ctx context.Context, status *domain.TicketStatus) ([]domain.SupportTicket, error)

	// ListTicketsByUser retrieves one user's tickets, newest first.
	ListTicketsByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error)

	// CountTicketsByStatus returns per-status counts.
	CountTicketsByStatus(ctx context.Context) (domain.TicketStats, error)
}

// TicketWriter defines write operations for support tickets.
type TicketWriter interface {
	SaveTicket(ctx context.Context, ticket domain.SupportTicket) error
	UpdateTicket(ctx context.Context, ticket domain.SupportTicket) error
}

// TicketTransactionSupport defines operations that support ticket transitions.
type TicketTransactionSupport interface {
	// FindTicketForUpdate locks the ticket until the surrounding transaction scope ends.
	FindTicketForUpdate(ctx context.Context, ticketID string) (*domain.SupportTicket, error)
}

// TicketRepositoryFacade combines all ticket repository interfaces.
type TicketRepositoryFacade interface {
	TicketReader
	TicketWriter
	TicketTransactionSupport
}
