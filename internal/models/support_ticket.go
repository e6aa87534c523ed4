package models

import "time"

// SupportTicket is a row of the support_tickets table.
type SupportTicket struct {
	TicketID      string     `db:"ticket_id"`
	UserID        string     `db:"user_id"`
	Message       string     `db:"message"`
	Status        string     `db:"status"`
	AdminResponse *string    `db:"admin_response"`
	RespondedBy   *string    `db:"responded_by"`
	RespondedAt   *time.Time `db:"responded_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}
