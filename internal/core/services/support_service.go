package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/google/uuid"
)

type supportService struct {
	BaseService
	ticketRepo  portsrepo.TicketRepositoryFacade
	accountRepo portsrepo.AccountReader
	txManager   portsrepo.TransactionManager
}

// NewSupportService creates a new support ticket service.
func NewSupportService(ticketRepo portsrepo.TicketRepositoryFacade, accountRepo portsrepo.AccountReader, txManager portsrepo.TransactionManager, options ...ServiceOption) portssvc.SupportSvcFacade {
	return &supportService{
		BaseService: newBaseService(options...),
		ticketRepo:  ticketRepo,
		accountRepo: accountRepo,
		txManager:   txManager,
	}
}

var _ portssvc.SupportSvcFacade = (*supportService)(nil)

func (s *supportService) CreateTicket(ctx context.Context, req dto.CreateTicketRequest) (*domain.SupportTicket, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	ticket := domain.SupportTicket{
		TicketID:  uuid.NewString(),
		UserID:    req.UserID,
		Message:   req.Message,
		Status:    domain.TicketOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		if _, err := s.accountRepo.FindAccountByID(ctx, req.UserID); err != nil {
			return err
		}
		return s.ticketRepo.SaveTicket(ctx, ticket)
	})
	if err != nil {
		s.LogOutcome(ctx, err, "Failed to create ticket", slog.String("user_id", req.UserID))
		return nil, err
	}

	s.LogInfo(ctx, "Ticket created", slog.String("ticket_id", ticket.TicketID), slog.String("user_id", req.UserID))
	return &ticket, nil
}

// transition locks the ticket, applies change and saves the result.
func (s *supportService) transition(ctx context.Context, ticketID string, change func(t *domain.SupportTicket) error) (*domain.SupportTicket, error) {
	var ticket *domain.SupportTicket
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.txManager.RunInTx(ctx, func(ctx context.Context) error {
			var err error
			ticket, err = s.ticketRepo.FindTicketForUpdate(ctx, ticketID)
			if err != nil {
				return err
			}
			if err := change(ticket); err != nil {
				return err
			}
			return s.ticketRepo.UpdateTicket(ctx, *ticket)
		})
	})
	if err != nil {
		s.LogOutcome(ctx, err, "Ticket transition rejected", slog.String("ticket_id", ticketID))
		return nil, err
	}
	s.LogInfo(ctx, "Ticket updated", slog.String("ticket_id", ticketID), slog.String("status", string(ticket.Status)))
	return ticket, nil
}

func (s *supportService) SetInProgress(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	return s.transition(ctx, ticketID, func(t *domain.SupportTicket) error {
		return t.SetInProgress(s.now())
	})
}

func (s *supportService) Respond(ctx context.Context, req dto.RespondTicketRequest) (*domain.SupportTicket, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.transition(ctx, req.TicketID, func(t *domain.SupportTicket) error {
		return t.Respond(req.AdminID, req.Response, s.now())
	})
}

func (s *supportService) CloseTicket(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	return s.transition(ctx, ticketID, func(t *domain.SupportTicket) error {
		return t.Close(s.now())
	})
}

func (s *supportService) GetTicket(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	var ticket *domain.SupportTicket
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.ticketRepo.FindTicketByID(ctx, ticketID)
		return err
	})
	return ticket, err
}

func (s *supportService) ListTickets(ctx context.Context, status *domain.TicketStatus) ([]domain.SupportTicket, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown ticket status %q", apperrors.ErrValidation, *status)
	}
	var tickets []domain.SupportTicket
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		tickets, err = s.ticketRepo.ListTickets(ctx, status)
		return err
	})
	return tickets, err
}

func (s *supportService) ListTicketsByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error) {
	var tickets []domain.SupportTicket
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		tickets, err = s.ticketRepo.ListTicketsByUser(ctx, userID)
		return err
	})
	return tickets, err
}

func (s *supportService) TicketStats(ctx context.Context) (domain.TicketStats, error) {
	var stats domain.TicketStats
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		stats, err = s.ticketRepo.CountTicketsByStatus(ctx)
		return err
	})
	return stats, err
}

func (s *supportService) OpenTicketCount(ctx context.Context) (int, error) {
	stats, err := s.TicketStats(ctx)
	if err != nil {
		return 0, err
	}
	return stats.Open, nil
}
