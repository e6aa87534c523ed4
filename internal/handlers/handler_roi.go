package handlers

import (
	"context"
	"net/http"

	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

type roiHandler struct {
	roiService portssvc.ROISvcFacade
	runner     portssvc.SweepRunnerSvc
}

// RegisterROIRoutes registers the ROI sweep and reporting routes.
func RegisterROIRoutes(rg *gin.RouterGroup, rs portssvc.ROISvcFacade, runner portssvc.SweepRunnerSvc) {
	h := &roiHandler{roiService: rs, runner: runner}

	roi := rg.Group("/roi")
	{
		roi.POST("/sweep", h.sweep)
		roi.GET("/status", h.status)
		roi.GET("/due", h.due)
	}
}

// sweep runs a catch-up sweep now. A sweep already in flight is answered with 409.
// The sweep runs to completion even if the client disconnects.
func (h *roiHandler) sweep(c *gin.Context) {
	result, ran := h.runner.TriggerSweep(context.WithoutCancel(c.Request.Context()))
	if !ran {
		c.JSON(http.StatusConflict, gin.H{"error": "An ROI sweep is already running"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *roiHandler) status(c *gin.Context) {
	due, err := h.roiService.DueAccounts(c.Request.Context(), h.roiService.Now())
	if err != nil {
		respondError(c, err, "Failed to load ROI status")
		return
	}
	policy := h.roiService.Policy()
	c.JSON(http.StatusOK, gin.H{
		"scheduler":      h.runner.Status(),
		"dueCount":       len(due),
		"roiPercentage":  policy.Percentage,
		"intervalDays":   int(policy.Interval.Hours() / 24),
		"cyclesRequired": policy.MaxCycles,
	})
}

func (h *roiHandler) due(c *gin.Context) {
	due, err := h.roiService.DueAccounts(c.Request.Context(), h.roiService.Now())
	if err != nil {
		respondError(c, err, "Failed to list due accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"due": due})
}
