package postgresql

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

const TableAttachments = "attachments"

// HashStore keeps the content hashes of processed attachments.
type HashStore struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewHashStore(pool *pgxpool.Pool) *HashStore {
	return &HashStore{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *HashStore) Exists(ctx context.Context, hash string) (bool, error) {
	db := extractDB(ctx, s.pool)

	sql, args, err := s.qb.
		Select("1").
		Prefix("SELECT EXISTS (").
		From(TableAttachments).
		Where(sq.Eq{"hash": hash}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, createQueryError(err)
	}

	var exists bool
	if err := db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, scanRowError(err)
	}

	return exists, nil
}

// Record stores hashes; hashes already present keep their first-seen data.
func (s *HashStore) Record(ctx context.Context, files ...*domain.SeenFile) error {
	if len(files) == 0 {
		return nil
	}

	db := extractDB(ctx, s.pool)

	insert := s.qb.
		Insert(TableAttachments).
		Columns(
			"hash",
			"filename",
			"first_seen_at",
		).
		Suffix("ON CONFLICT (hash) DO NOTHING")

	for _, f := range files {
		insert = insert.Values(f.Hash, f.Filename, f.FirstSeenAt)
	}

	sql, args, err := insert.ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return executeQueryError(err)
	}

	return nil
}
