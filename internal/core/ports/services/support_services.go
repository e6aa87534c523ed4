package services

import (
	"context"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/dto"
)

// SupportReaderSvc defines read operations for support tickets.
type SupportReaderSvc interface {
	GetTicket(ctx context.Context, ticketID string) (*domain.SupportTicket, error)
	ListTickets(ctx context.Context, status *domain.TicketStatus) ([]domain.SupportTicket, error)
	ListTicketsByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error)
	OpenTicketCount(ctx context.Context) (int, error)
	TicketStats(ctx context.Context) (domain.TicketStats, error)
}

// SupportWriterSvc defines ticket creation and transitions.
type SupportWriterSvc interface {
	CreateTicket(ctx context.Context, req dto.CreateTicketRequest) (*domain.SupportTicket, error)
	SetInProgress(ctx context.Context, ticketID string) (*domain.SupportTicket, error)
	Respond(ctx context.Context, req dto.RespondTicketRequest) (*domain.SupportTicket, error)
	CloseTicket(ctx context.Context, ticketID string) (*domain.SupportTicket, error)
}

// SupportSvcFacade combines all support-ticket service interfaces.
type SupportSvcFacade interface {
	SupportReaderSvc
	SupportWriterSvc
}
