package sqlite

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
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
	db *sql.DB
	qb sq.StatementBuilderType
}

func NewRunsRepository(db *sql.DB) *RunsRepository {
	return &RunsRepository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (r *RunsRepository) SaveRun(ctx context.Context, report *domain.RunReport) error {
	db := extractDB(ctx, r.db)

	query, args, err := r.qb.
		Insert(TableRuns).
		Columns(runColumns...).
		Values(
			report.RunID,
			string(report.Status),
			string(report.Stage),
			report.ErrorKind,
			report.Message,
			report.Fetched,
			report.Deduped,
			report.Rejected,
			report.Valid,
			report.Invalid,
			report.Published,
			report.StartedAt.UTC(),
			report.FinishedAt.UTC(),
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			stage = excluded.stage,
			error_kind = excluded.error_kind,
			message = excluded.message,
			fetched = excluded.fetched,
			deduped = excluded.deduped,
			rejected = excluded.rejected,
			valid = excluded.valid,
			invalid = excluded.invalid,
			published = excluded.published,
			finished_at = excluded.finished_at
		`).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return executeQueryError(err)
	}

	return nil
}

func (r *RunsRepository) Run(ctx context.Context, id string) (*domain.RunReport, error) {
	db := extractDB(ctx, r.db)

	query, args, err := r.qb.
		Select(runColumns...).
		From(TableRuns).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	run, err := scanRun(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, scanRowError(err)
	}

	return run, nil
}

func (r *RunsRepository) Runs(ctx context.Context, limit, offset uint64) ([]*domain.RunReport, int, error) {
	db := extractDB(ctx, r.db)

	query, args, err := r.qb.
		Select("COUNT(*)").
		From(TableRuns).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	var total int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, -1, scanRowError(err)
	}

	query, args, err = r.qb.
		Select(runColumns...).
		From(TableRuns).
		OrderBy("started_at DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, -1, executeQueryError(err)
	}
	defer rows.Close()

	runs := make([]*domain.RunReport, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, -1, scanRowError(err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, -1, executeQueryError(err)
	}

	return runs, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.RunReport, error) {
	var run domain.RunReport
	err := row.Scan(
		&run.RunID,
		&run.Status,
		&run.Stage,
		&run.ErrorKind,
		&run.Message,
		&run.Fetched,
		&run.Deduped,
		&run.Rejected,
		&run.Valid,
		&run.Invalid,
		&run.Published,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	return &run, nil
}
