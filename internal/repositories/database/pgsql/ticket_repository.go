package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	"github.com/SscSPs/investment_bot/internal/models"
	"github.com/SscSPs/investment_bot/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ticketColumns = `ticket_id, user_id, message, status, admin_response, responded_by,
	responded_at, created_at, updated_at`

type PgxTicketRepository struct {
	BaseRepository
}

func newPgxTicketRepository(pool *pgxpool.Pool) *PgxTicketRepository {
	return &PgxTicketRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TicketRepositoryFacade = (*PgxTicketRepository)(nil)

func scanTicket(row pgx.Row) (domain.SupportTicket, error) {
	var m models.SupportTicket
	err := row.Scan(
		&m.TicketID,
		&m.UserID,
		&m.Message,
		&m.Status,
		&m.AdminResponse,
		&m.RespondedBy,
		&m.RespondedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.SupportTicket{}, err
	}
	return mapping.ToDomainSupportTicket(m), nil
}

func (r *PgxTicketRepository) SaveTicket(ctx context.Context, ticket domain.SupportTicket) error {
	m := mapping.ToModelSupportTicket(ticket)
	query := `INSERT INTO support_tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	_, err := r.db(ctx).Exec(ctx, query,
		m.TicketID,
		m.UserID,
		m.Message,
		m.Status,
		m.AdminResponse,
		m.RespondedBy,
		m.RespondedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ticket %s already exists", apperrors.ErrDuplicate, m.TicketID)
		}
		return mapError(ctx, fmt.Errorf("failed to save ticket %s: %w", m.TicketID, err))
	}
	return nil
}

func (r *PgxTicketRepository) UpdateTicket(ctx context.Context, ticket domain.SupportTicket) error {
	m := mapping.ToModelSupportTicket(ticket)
	query := `
		UPDATE support_tickets
		SET status = $2, admin_response = $3, responded_by = $4, responded_at = $5, updated_at = $6
		WHERE ticket_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query, m.TicketID, m.Status, m.AdminResponse, m.RespondedBy, m.RespondedAt, m.UpdatedAt)
	if err != nil {
		return mapError(ctx, fmt.Errorf("failed to update ticket %s: %w", m.TicketID, err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ticket %s", apperrors.ErrNotFound, m.TicketID)
	}
	return nil
}

func (r *PgxTicketRepository) findOne(ctx context.Context, q querier, query, ticketID string) (*domain.SupportTicket, error) {
	t, err := scanTicket(q.QueryRow(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: ticket %s", apperrors.ErrNotFound, ticketID)
		}
		return nil, mapError(ctx, fmt.Errorf("failed to find ticket %s: %w", ticketID, err))
	}
	return &t, nil
}

func (r *PgxTicketRepository) FindTicketByID(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE ticket_id = $1;`
	return r.findOne(ctx, r.db(ctx), query, ticketID)
}

func (r *PgxTicketRepository) FindTicketForUpdate(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	tx, err := r.tx(ctx, "FindTicketForUpdate")
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE ticket_id = $1 FOR UPDATE;`
	return r.findOne(ctx, tx, query, ticketID)
}

func (r *PgxTicketRepository) list(ctx context.Context, query string, args ...any) ([]domain.SupportTicket, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(ctx, fmt.Errorf("failed to query tickets: %w", err))
	}
	defer rows.Close()

	tickets := []domain.SupportTicket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket row: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(ctx, fmt.Errorf("error iterating ticket rows: %w", err))
	}
	return tickets, nil
}

// ListTickets retrieves tickets newest first. A nil status returns every ticket.
func (r *PgxTicketRepository) ListTickets(ctx context.Context, status *domain.TicketStatus) ([]domain.SupportTicket, error) {
	if status == nil {
		return r.list(ctx, `SELECT `+ticketColumns+` FROM support_tickets ORDER BY created_at DESC, ticket_id;`)
	}
	return r.list(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE status = $1 ORDER BY created_at DESC, ticket_id;`, string(*status))
}

func (r *PgxTicketRepository) ListTicketsByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE user_id = $1 ORDER BY created_at DESC, ticket_id;`, userID)
}

func (r *PgxTicketRepository) CountTicketsByStatus(ctx context.Context) (domain.TicketStats, error) {
	rows, err := r.db(ctx).Query(ctx, `SELECT status, COUNT(*) FROM support_tickets GROUP BY status;`)
	if err != nil {
		return domain.TicketStats{}, mapError(ctx, fmt.Errorf("failed to count tickets: %w", err))
	}
	defer rows.Close()

	var stats domain.TicketStats
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return domain.TicketStats{}, fmt.Errorf("failed to scan ticket count row: %w", err)
		}
		stats.Total += n
		switch domain.TicketStatus(status) {
		case domain.TicketOpen:
			stats.Open = n
		case domain.TicketInProgress:
			stats.InProgress = n
		case domain.TicketClosed:
			stats.Closed = n
		}
	}
	if err := rows.Err(); err != nil {
		return domain.TicketStats{}, mapError(ctx, fmt.Errorf("error iterating ticket count rows: %w", err))
	}
	return stats, nil
}
