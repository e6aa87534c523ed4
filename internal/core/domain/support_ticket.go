package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
)

// TicketStatus is the state of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	return s == TicketOpen || s == TicketInProgress || s == TicketClosed
}

// SupportTicket is a user message to the admins. Closed is terminal.
type SupportTicket struct {
	TicketID      string       `json:"ticketID"`
	UserID        string       `json:"userID"`
	Message       string       `json:"message"`
	Status        TicketStatus `json:"status"`
	AdminResponse string       `json:"adminResponse,omitempty"`
	RespondedBy   string       `json:"respondedBy,omitempty"`
	RespondedAt   *time.Time   `json:"respondedAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func (t *SupportTicket) ensureNotClosed() error {
	if t.Status == TicketClosed {
		return fmt.Errorf("%w: ticket %s is closed", apperrors.ErrInvalidTransition, t.TicketID)
	}
	return nil
}

// SetInProgress moves an open ticket to in_progress.
func (t *SupportTicket) SetInProgress(now time.Time) error {
	if t.Status != TicketOpen {
		return fmt.Errorf("%w: ticket %s is %s", apperrors.ErrInvalidTransition, t.TicketID, t.Status)
	}
	t.Status = TicketInProgress
	t.UpdatedAt = now
	return nil
}

// Respond records the admin's answer and closes the ticket.
func (t *SupportTicket) Respond(adminID, response string, now time.Time) error {
	if err := t.ensureNotClosed(); err != nil {
		return err
	}
	t.AdminResponse = response
	t.RespondedBy = adminID
	t.RespondedAt = &now
	t.Status = TicketClosed
	t.UpdatedAt = now
	return nil
}

// Close closes the ticket without a response.
func (t *SupportTicket) Close(now time.Time) error {
	if err := t.ensureNotClosed(); err != nil {
		return err
	}
	t.Status = TicketClosed
	t.UpdatedAt = now
	return nil
}

// TicketStats counts tickets per status.
type TicketStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
}

// Add counts one ticket with the given status.
func (s *TicketStats) Add(status TicketStatus) {
	s.Total++
	switch status {
	case TicketOpen:
		s.Open++
	case TicketInProgress:
		s.InProgress++
	case TicketClosed:
		s.Closed++
	}
}
