package pipeline

import (
	"context"
	"iter"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

type Extractor interface {
	Extract(ctx context.Context, query string) iter.Seq2[*domain.Attachment, error]
}

type HashStore interface {
	Exists(ctx context.Context, hash string) (bool, error)
	Record(ctx context.Context, files ...*domain.SeenFile) error
}

type RunSaver interface {
	SaveRun(ctx context.Context, report *domain.RunReport) error
}

type RunLocker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// LockRefresher is implemented by lockers whose lock expires on its own.
type LockRefresher interface {
	Refresh(ctx context.Context) error
}

type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Schemas interface {
	CanonicalHeader(header []string) []string
	Detect(columns []string) domain.Category
	Coerce(row *domain.Row)
	RowValidator
	Categories() []domain.Category
}

type RowValidator interface {
	Validate(row *domain.Row) domain.ValidationResult
}

type Publisher interface {
	Publish(ctx context.Context, runID string, dataset *domain.CombinedDataset) error
}

type Notifier interface {
	Notify(ctx context.Context, report *domain.RunReport) error
}

type ReportGenerator interface {
	GenerateReport(outputPath, runID string, summary []domain.SummaryRow, invalid []domain.InvalidRecord) error
}
