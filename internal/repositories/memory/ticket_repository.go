package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
)

// TicketRepository keeps support tickets in a Store.
type TicketRepository struct {
	store *Store
}

// NewTicketRepository creates a new repository for support tickets.
func NewTicketRepository(store *Store) *TicketRepository {
	return &TicketRepository{store: store}
}

var _ portsrepo.TicketRepositoryFacade = (*TicketRepository)(nil)

func (r *TicketRepository) SaveTicket(ctx context.Context, ticket domain.SupportTicket) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, exists := r.store.tickets[ticket.TicketID]; exists {
		return fmt.Errorf("%w: ticket %s already exists", apperrors.ErrDuplicate, ticket.TicketID)
	}
	r.store.tickets[ticket.TicketID] = ticket
	r.store.ticketOrder = prepend(r.store.ticketOrder, ticket.TicketID)
	return nil
}

func (r *TicketRepository) UpdateTicket(ctx context.Context, ticket domain.SupportTicket) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.tickets[ticket.TicketID]; !ok {
		return fmt.Errorf("%w: ticket %s", apperrors.ErrNotFound, ticket.TicketID)
	}
	r.store.tickets[ticket.TicketID] = ticket
	return nil
}

func (r *TicketRepository) FindTicketByID(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return r.find(ticketID)
}

func (r *TicketRepository) FindTicketForUpdate(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	if !r.store.inTx(ctx) {
		return nil, fmt.Errorf("FindTicketForUpdate requires a transaction scope")
	}
	return r.find(ticketID)
}

func (r *TicketRepository) find(ticketID string) (*domain.SupportTicket, error) {
	t, ok := r.store.tickets[ticketID]
	if !ok {
		return nil, fmt.Errorf("%w: ticket %s", apperrors.ErrNotFound, ticketID)
	}
	return &t, nil
}

func (r *TicketRepository) ListTickets(ctx context.Context, status *domain.TicketStatus) ([]domain.SupportTicket, error) {
	return r.list(ctx, func(t domain.SupportTicket) bool {
		return status == nil || t.Status == *status
	})
}

func (r *TicketRepository) ListTicketsByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error) {
	return r.list(ctx, func(t domain.SupportTicket) bool { return t.UserID == userID })
}

func (r *TicketRepository) list(ctx context.Context, keep func(domain.SupportTicket) bool) ([]domain.SupportTicket, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var out []domain.SupportTicket
	for _, id := range r.store.ticketOrder {
		if t := r.store.tickets[id]; keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TicketRepository) CountTicketsByStatus(ctx context.Context) (domain.TicketStats, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return domain.TicketStats{}, err
	}
	defer release()

	var stats domain.TicketStats
	for _, t := range r.store.tickets {
		stats.Add(t.Status)
	}
	return stats, nil
}
