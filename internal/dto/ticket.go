package dto

// CreateTicketRequest opens a support ticket for an existing account.
type CreateTicketRequest struct {
	UserID  string `json:"userID" validate:"required"`
	Message string `json:"message" validate:"required,max=2000"`
}

// RespondTicketRequest answers and closes a ticket.
type RespondTicketRequest struct {
	TicketID string `json:"ticketID" validate:"required"`
	AdminID  string `json:"adminID" validate:"required"`
	Response string `json:"response" validate:"required,max=2000"`
}

// ListTicketsParams filters the ticket list.
type ListTicketsParams struct {
	Status string `form:"status"`
}
