package handlers

import (
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/SscSPs/investment_bot/internal/platform/config"
	"github.com/SscSPs/investment_bot/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	runner portssvc.SweepRunnerSvc,
	rateLimiter *limiter.Limiter,
	analytics *utils.PosthogClientWrapper,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, runner, rateLimiter, analytics)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	runner portssvc.SweepRunnerSvc,
	rateLimiter *limiter.Limiter,
	analytics *utils.PosthogClientWrapper,
) {
	v1 := r.Group("/api/v1")
	if rateLimiter != nil {
		v1.Use(middleware.RateLimit(rateLimiter))
	}
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	v1.Use(middleware.PosthogMiddleware(analytics))

	RegisterAccountRoutes(v1, services.Account, services.Balance, services.ROI)
	RegisterTransferRoutes(v1, services.Balance)
	RegisterAccessCodeRoutes(v1, services.AccessCode)
	RegisterROIRoutes(v1, services.ROI, runner)
	RegisterTicketRoutes(v1, services.Support)
}
