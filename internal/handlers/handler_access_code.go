package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/gin-gonic/gin"
)

type accessCodeHandler struct {
	accessCodeService portssvc.AccessCodeSvcFacade
}

// RegisterAccessCodeRoutes registers routes related to access codes.
func RegisterAccessCodeRoutes(rg *gin.RouterGroup, svc portssvc.AccessCodeSvcFacade) {
	h := &accessCodeHandler{accessCodeService: svc}

	codes := rg.Group("/access-codes")
	{
		codes.POST("", h.createCode)
		codes.GET("", h.listCodes)
		codes.POST("/:code/redeem", h.redeem)
	}
}

func (h *accessCodeHandler) createCode(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.CreateAccessCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	code, err := h.accessCodeService.CreateAccessCode(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create access code")
		return
	}
	c.JSON(http.StatusCreated, code)
}

func (h *accessCodeHandler) listCodes(c *gin.Context) {
	codes, err := h.accessCodeService.ListAccessCodes(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list access codes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessCodes": codes})
}

// redeem opens an account for the user named in the body on behalf of that user.
func (h *accessCodeHandler) redeem(c *gin.Context) {
	var req dto.RedeemAccessCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Code = c.Param("code")

	acc, err := h.accessCodeService.RedeemAccessCode(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to redeem access code")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(acc))
}
