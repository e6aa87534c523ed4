package handlers

import (
	"net/http"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/gin-gonic/gin"
)

type ticketHandler struct {
	supportService portssvc.SupportSvcFacade
}

// RegisterTicketRoutes registers routes related to support tickets.
func RegisterTicketRoutes(rg *gin.RouterGroup, svc portssvc.SupportSvcFacade) {
	h := &ticketHandler{supportService: svc}

	tickets := rg.Group("/tickets")
	{
		tickets.GET("", h.listTickets)
		tickets.GET("/stats", h.stats)
		tickets.GET("/:ticketID", h.getTicket)
		tickets.POST("/:ticketID/progress", h.progress)
		tickets.POST("/:ticketID/respond", h.respond)
		tickets.POST("/:ticketID/close", h.closeTicket)
	}
}

type respondBody struct {
	Response string `json:"response"`
}

func (h *ticketHandler) listTickets(c *gin.Context) {
	var params dto.ListTicketsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	var status *domain.TicketStatus
	if params.Status != "" {
		s := domain.TicketStatus(params.Status)
		status = &s
	}
	tickets, err := h.supportService.ListTickets(c.Request.Context(), status)
	if err != nil {
		respondError(c, err, "Failed to list tickets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

func (h *ticketHandler) stats(c *gin.Context) {
	stats, err := h.supportService.TicketStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load ticket stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ticketHandler) getTicket(c *gin.Context) {
	ticket, err := h.supportService.GetTicket(c.Request.Context(), c.Param("ticketID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve ticket")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *ticketHandler) progress(c *gin.Context) {
	ticket, err := h.supportService.SetInProgress(c.Request.Context(), c.Param("ticketID"))
	if err != nil {
		respondError(c, err, "Failed to update ticket")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// respond answers and closes the ticket as the authenticated admin.
func (h *ticketHandler) respond(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var body respondBody
	if !bindJSON(c, &body) {
		return
	}
	ticket, err := h.supportService.Respond(c.Request.Context(), dto.RespondTicketRequest{
		TicketID: c.Param("ticketID"),
		AdminID:  actor,
		Response: body.Response,
	})
	if err != nil {
		respondError(c, err, "Failed to respond to ticket")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *ticketHandler) closeTicket(c *gin.Context) {
	ticket, err := h.supportService.CloseTicket(c.Request.Context(), c.Param("ticketID"))
	if err != nil {
		respondError(c, err, "Failed to close ticket")
		return
	}
	c.JSON(http.StatusOK, ticket)
}
