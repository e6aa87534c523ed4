package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPgxPool creates a new PostgreSQL connection pool. Connecting is retried with
// exponential backoff until maxElapsed has passed; zero tries once.
func NewPgxPool(ctx context.Context, databaseURL string, maxElapsed time.Duration) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}
	config.MaxConns = 20
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 10 * time.Minute

	connect := func() (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return pool, nil
	}

	var pool *pgxpool.Pool
	if maxElapsed <= 0 {
		pool, err = connect()
	} else {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = maxElapsed
		pool, err = backoff.RetryNotifyWithData(connect, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
			slog.Warn("Database not reachable, retrying", "error", err, "retry_in", wait)
		})
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Successfully connected to PostgreSQL database.")
	return pool, nil
}

// ClosePgxPool closes the PostgreSQL connection pool.
func ClosePgxPool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
		slog.Info("PostgreSQL connection pool closed.")
	}
}
