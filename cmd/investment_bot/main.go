package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/investment_bot/internal/bots"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/core/services"
	"github.com/SscSPs/investment_bot/internal/handlers"
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/SscSPs/investment_bot/internal/platform/config"
	"github.com/SscSPs/investment_bot/internal/platform/storage"
	"github.com/SscSPs/investment_bot/internal/scheduler"
	"github.com/SscSPs/investment_bot/internal/session"
	"github.com/SscSPs/investment_bot/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 15 * time.Second
	botConnectTimeout = time.Minute
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Application stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Application stopped")
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = middleware.WithLogger(ctx, logger)

	repos, closeStore, err := storage.Open(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := services.NewServiceContainer(cfg, repos)
	sched := scheduler.New(svc.ROI, scheduler.Config{Interval: cfg.ROISweepInterval, RunOnStart: true})

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	analytics := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer analytics.Close()

	router, err := newRouter(cfg, logger, svc, sched, analytics)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sched.Run(middleware.WithLogger(gctx, logger.With(slog.String("component", "scheduler"))))
	})

	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := startBots(gctx, g, cfg, svc, sched, sessions); err != nil {
		stop()
		_ = g.Wait()
		return err
	}

	return g.Wait()
}

func newRouter(cfg *config.Config, logger *slog.Logger, svc *portssvc.ServiceContainer, runner portssvc.SweepRunnerSvc, analytics *utils.PosthogClientWrapper) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if len(cfg.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		corsConfig.ExposeHeaders = []string{"Content-Length", "X-Request-ID"}
		r.Use(cors.New(corsConfig))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	handlers.RegisterRoutes(r, cfg, svc, runner, rateLimiter, analytics)
	return r, nil
}

// openSessions uses Redis when REDIS_URL is set so bot conversations survive restarts.
func openSessions(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	if cfg.RedisURL == "" {
		return session.NewMemoryStore(session.DefaultMaxEntries, cfg.SessionTTL), func() {}, nil
	}
	store, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// startBots connects the configured bots and runs each in g. A bot without a token is skipped.
func startBots(ctx context.Context, g *errgroup.Group, cfg *config.Config, svc *portssvc.ServiceContainer, runner portssvc.SweepRunnerSvc, sessions session.Store) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Admin replies to tickets reach users through the user bot.
	var notify bots.Sender

	if cfg.UserBotToken != "" {
		api, err := bots.NewAPI(ctx, cfg.UserBotToken, botConnectTimeout)
		if err != nil {
			return fmt.Errorf("user bot: %w", err)
		}
		notify = api
		userBot := bots.NewUserBot(api, svc, sessions, bots.UserBotConfig{
			BTCAddress:       cfg.BTCAddress,
			USDTTRC20Address: cfg.USDTTRC20Address,
		})
		g.Go(func() error {
			bots.Run(ctx, "user", api, userBot)
			return nil
		})
	} else {
		logger.Warn("USER_BOT_TOKEN not set, user bot disabled")
	}

	if cfg.AdminBotToken != "" {
		api, err := bots.NewAPI(ctx, cfg.AdminBotToken, botConnectTimeout)
		if err != nil {
			return fmt.Errorf("admin bot: %w", err)
		}
		adminBot := bots.NewAdminBot(api, svc, runner, notify, bots.AdminBotConfig{
			AdminChatIDs:  cfg.AdminChatIDs,
			SweepInterval: cfg.ROISweepInterval,
		})
		g.Go(func() error {
			bots.Run(ctx, "admin", api, adminBot)
			return nil
		})
	} else {
		logger.Warn("ADMIN_BOT_TOKEN not set, admin bot disabled")
	}
	return nil
}
