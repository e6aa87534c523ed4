// Package storage opens the repository backend selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/SscSPs/investment_bot/internal/platform/config"
	"github.com/SscSPs/investment_bot/internal/repositories/database/pgsql"
	"github.com/SscSPs/investment_bot/internal/repositories/memory"
	"github.com/SscSPs/investment_bot/migrations"
	"github.com/SscSPs/investment_bot/pkg/database"
)

// Open returns the repositories for cfg.StorageDriver and a func releasing them.
// Postgres schema migrations are applied first when migrate is set.
func Open(ctx context.Context, cfg *config.Config, migrate bool) (portsrepo.RepositoryProvider, func(), error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil

	case config.StoragePostgres:
		if migrate {
			if err := database.Migrate(cfg.DatabaseURL, migrations.FS); err != nil {
				return portsrepo.RepositoryProvider{}, nil, err
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.DBConnectMaxElapsed)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.", slog.Int("max_conns", int(pool.Config().MaxConns)))
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil

	default:
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
