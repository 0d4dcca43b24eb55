package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

const TableAttachments = "attachments"

type HashStore struct {
	db *sql.DB
	qb sq.StatementBuilderType
}

func NewHashStore(db *sql.DB) *HashStore {
	return &HashStore{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (s *HashStore) Exists(ctx context.Context, hash string) (bool, error) {
	db := extractDB(ctx, s.db)

	query, args, err := s.qb.
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
	if err := db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, scanRowError(err)
	}

	return exists, nil
}

func (s *HashStore) Record(ctx context.Context, files ...*domain.SeenFile) error {
	if len(files) == 0 {
		return nil
	}

	db := extractDB(ctx, s.db)

	insert := s.qb.
		Insert(TableAttachments).
		Options("OR IGNORE").
		Columns(
			"hash",
			"filename",
			"first_seen_at",
		)

	for _, f := range files {
		insert = insert.Values(f.Hash, f.Filename, f.FirstSeenAt.UTC())
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return executeQueryError(err)
	}

	return nil
}
