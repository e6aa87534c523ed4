package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/gin-gonic/gin"
)

type transferHandler struct {
	balanceService portssvc.BalanceMutatorSvc
}

// RegisterTransferRoutes registers the account-to-account transfer route.
func RegisterTransferRoutes(rg *gin.RouterGroup, bs portssvc.BalanceMutatorSvc) {
	h := &transferHandler{balanceService: bs}
	rg.POST("/transfers", h.transfer)
}

// transfer moves funds between two accounts. Both legs commit or neither does.
func (h *transferHandler) transfer(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.TransferRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.balanceService.Transfer(c.Request.Context(), req, actor); err != nil {
		respondError(c, err, "Failed to transfer funds")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}
