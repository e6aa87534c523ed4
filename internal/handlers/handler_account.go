package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts and their balances.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	balanceService portssvc.BalanceSvcFacade
	roiService     portssvc.ROISvcFacade
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, as portssvc.AccountSvcFacade, bs portssvc.BalanceSvcFacade, rs portssvc.ROISvcFacade) {
	h := &accountHandler{accountService: as, balanceService: bs, roiService: rs}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:userID", h.getAccount)
		accounts.DELETE("/:userID", h.deactivateAccount)
		accounts.POST("/:userID/credit", h.credit)
		accounts.POST("/:userID/debit", h.debit)
		accounts.POST("/:userID/withdraw", h.withdraw)
		accounts.POST("/:userID/reinvest", h.reinvest)
		accounts.POST("/:userID/roi", h.processROI)
		accounts.GET("/:userID/history", h.history)
		accounts.GET("/:userID/projection", h.projection)
	}
}

// createAccount registers an account directly with an initial deposit.
func (h *accountHandler) createAccount(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account created", slog.String("user_id", acc.UserID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(acc))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

func (h *accountHandler) getAccount(c *gin.Context) {
	acc, err := h.accountService.GetAccount(c.Request.Context(), c.Param("userID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// deactivateAccount soft-deletes the account. Its ledger is kept.
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.accountService.DeactivateAccount(c.Request.Context(), c.Param("userID"), actor); err != nil {
		respondError(c, err, "Failed to deactivate account")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *accountHandler) credit(c *gin.Context) {
	h.change(c, h.balanceService.Credit, "Failed to credit account")
}

func (h *accountHandler) debit(c *gin.Context) {
	h.change(c, h.balanceService.Debit, "Failed to debit account")
}

func (h *accountHandler) change(c *gin.Context, apply func(ctx context.Context, req dto.BalanceChangeRequest, actor string) (*domain.Account, error), failMsg string) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.BalanceChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = c.Param("userID")

	acc, err := apply(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, failMsg)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

func (h *accountHandler) withdraw(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.WithdrawRequest
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = c.Param("userID")

	acc, err := h.balanceService.Withdraw(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to record withdrawal")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

func (h *accountHandler) reinvest(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	acc, err := h.balanceService.Reinvest(c.Request.Context(), c.Param("userID"), actor)
	if err != nil {
		respondError(c, err, "Failed to reinvest")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// processROI pays one cycle now. The acting admin is taken from the request context.
func (h *accountHandler) processROI(c *gin.Context) {
	acc, err := h.roiService.ProcessOne(c.Request.Context(), c.Param("userID"), h.roiService.Now())
	if err != nil {
		respondError(c, err, "Failed to process ROI")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

func (h *accountHandler) history(c *gin.Context) {
	var params dto.HistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	records, err := h.balanceService.GetHistory(c.Request.Context(), c.Param("userID"), params.Limit)
	if err != nil {
		respondError(c, err, "Failed to load history")
		return
	}
	c.JSON(http.StatusOK, dto.ToListLedgerRecordsResponse(records))
}

func (h *accountHandler) projection(c *gin.Context) {
	var params dto.ProjectionParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	projection, err := h.roiService.ProjectEarnings(c.Request.Context(), c.Param("userID"), params.Weeks)
	if err != nil {
		respondError(c, err, "Failed to project earnings")
		return
	}
	c.JSON(http.StatusOK, projection)
}
