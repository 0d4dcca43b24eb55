package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/config"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/retry"
)

const (
	maxRetries = 5
	retryDelay = 2 * time.Second
)

func ConnectionURL(cfg config.PostgreSQL) string {
	return (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     cfg.DBName,
		RawQuery: "sslmode=disable",
	}).String()
}

func NewConnection(ctx context.Context, log *slog.Logger, cfg config.PostgreSQL) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, ConnectionURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	policy := retry.Policy{Retries: maxRetries, Delay: retryDelay, MaxDelay: 4 * retryDelay}
	if err := retry.Do(ctx, log, policy, "postgresql ping", pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return pool, nil
}
