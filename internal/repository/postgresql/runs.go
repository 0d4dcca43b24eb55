package postgresql

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

const TableRuns = "runs"

var runColumns = []string{
	"id",
	"status",
	"stage",
	"error_kind",
	"message",
	"fetched",
	"deduped",
	"rejected",
	"valid",
	"invalid",
	"published",
	"started_at",
	"finished_at",
}

type RunsRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewRunsRepository(pool *pgxpool.Pool) *RunsRepository {
	return &RunsRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRun inserts the run or overwrites the stored state of the same run id.
func (r *RunsRepository) SaveRun(ctx context.Context, report *domain.RunReport) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Insert(TableRuns).
		Columns(runColumns...).
		Values(
			report.RunID,
			report.Status,
			report.Stage,
			report.ErrorKind,
			report.Message,
			report.Fetched,
			report.Deduped,
			report.Rejected,
			report.Valid,
			report.Invalid,
			report.Published,
			report.StartedAt,
			report.FinishedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			stage = EXCLUDED.stage,
			error_kind = EXCLUDED.error_kind,
			message = EXCLUDED.message,
			fetched = EXCLUDED.fetched,
			deduped = EXCLUDED.deduped,
			rejected = EXCLUDED.rejected,
			valid = EXCLUDED.valid,
			invalid = EXCLUDED.invalid,
			published = EXCLUDED.published,
			finished_at = EXCLUDED.finished_at
		`).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return executeQueryError(err)
	}

	return nil
}

func (r *RunsRepository) Run(ctx context.Context, id string) (*domain.RunReport, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(runColumns...).
		From(TableRuns).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	run, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[domain.RunReport])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, collectRowsError(err)
	}

	return run, nil
}

// Runs returns a page of runs, newest first, and the total number of runs.
func (r *RunsRepository) Runs(ctx context.Context, limit, offset uint64) ([]*domain.RunReport, int, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select("COUNT(*)").
		From(TableRuns).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	var total int
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, -1, scanRowError(err)
	}

	sql, args, err = r.qb.
		Select(runColumns...).
		From(TableRuns).
		OrderBy("started_at DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, -1, executeQueryError(err)
	}

	runs, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[domain.RunReport])
	if err != nil {
		return nil, -1, collectRowsError(err)
	}

	return runs, total, nil
}
