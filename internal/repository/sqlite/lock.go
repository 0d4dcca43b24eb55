package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

const TableRunLock = "run_lock"

// RunLocker serializes runs through a single row in run_lock. A lock whose
// holder died is taken over once its TTL expires; a live holder extends it
// with Refresh.
type RunLocker struct {
	log *slog.Logger
	db  *sql.DB
	qb  sq.StatementBuilderType
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	holder string
}

func NewRunLocker(log *slog.Logger, db *sql.DB, ttl time.Duration) *RunLocker {
	return &RunLocker{
		log: log,
		db:  db,
		qb:  sq.StatementBuilder.PlaceholderFormat(sq.Question),
		ttl: ttl,
		now: time.Now,
	}
}

func (l *RunLocker) Acquire(ctx context.Context) (func(), error) {
	now := l.now()
	holder := uuid.NewString()

	query, args, err := l.qb.
		Delete(TableRunLock).
		Where(sq.Lt{"expires_at": now.Unix()}).
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return nil, executeQueryError(err)
	}

	query, args, err = l.qb.
		Insert(TableRunLock).
		Options("OR IGNORE").
		Columns("id", "holder", "expires_at").
		Values(1, holder, now.Add(l.ttl).Unix()).
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	res, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return nil, domain.ErrRunInProgress
	}

	l.mu.Lock()
	l.holder = holder
	l.mu.Unlock()

	release := func() {
		ctx := context.Background()

		l.mu.Lock()
		if l.holder == holder {
			l.holder = ""
		}
		l.mu.Unlock()

		query, args, err := l.qb.
			Delete(TableRunLock).
			Where(sq.Eq{"holder": holder}).
			ToSql()
		if err == nil {
			_, err = l.db.ExecContext(ctx, query, args...)
		}

		if err != nil {
			l.log.WarnContext(ctx, "failed to release run lock, it expires on its own",
				slog.String("holder", holder),
				slog.String("err", err.Error()),
			)
		}
	}

	return release, nil
}

// Refresh pushes the expiry of the lock held by this locker one TTL ahead.
// It is a no-op when nothing is held.
func (l *RunLocker) Refresh(ctx context.Context) error {
	l.mu.Lock()
	holder := l.holder
	l.mu.Unlock()

	if holder == "" {
		return nil
	}

	query, args, err := l.qb.
		Update(TableRunLock).
		Set("expires_at", l.now().Add(l.ttl).Unix()).
		Where(sq.Eq{"holder": holder}).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	res, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return executeQueryError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("run lock held by %s was taken over", holder)
	}

	return nil
}
