package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

// RunLockKey identifies the pipeline's session-level advisory lock.
const RunLockKey int64 = 0x6175746f72657074

// RunLocker serializes runs across processes sharing the database with
// pg_try_advisory_lock. The lock lives as long as the connection holding it.
type RunLocker struct {
	log  *slog.Logger
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewRunLocker(log *slog.Logger, pool *pgxpool.Pool) *RunLocker {
	return &RunLocker{
		log:  log,
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (l *RunLocker) Acquire(ctx context.Context) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	sql, args, err := l.qb.Select().Column(sq.Expr("pg_try_advisory_lock(?)", RunLockKey)).ToSql()
	if err != nil {
		conn.Release()
		return nil, createQueryError(err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, sql, args...).Scan(&locked); err != nil {
		conn.Release()
		return nil, scanRowError(err)
	}

	if !locked {
		conn.Release()
		return nil, domain.ErrRunInProgress
	}

	release := func() {
		ctx := context.Background()

		sql, args, err := l.qb.Select().Column(sq.Expr("pg_advisory_unlock(?)", RunLockKey)).ToSql()
		if err == nil {
			_, err = conn.Exec(ctx, sql, args...)
		}

		if err != nil {
			// the session still holds the lock, so the connection must not go back to the pool
			l.log.WarnContext(ctx, "failed to release run lock, closing connection", slog.String("err", err.Error()))
			_ = conn.Conn().Close(ctx)
		}

		conn.Release()
	}

	return release, nil
}
