package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

// Recorder persists what a published run has seen: the content hashes that make
// later runs skip the same attachments, and the run report itself.
type Recorder struct {
	log        *slog.Logger
	hashStore  HashStore
	runSaver   RunSaver
	transactor Transactor
}

func NewRecorder(log *slog.Logger, hashStore HashStore, runSaver RunSaver, transactor Transactor) *Recorder {
	return &Recorder{
		log:        log,
		hashStore:  hashStore,
		runSaver:   runSaver,
		transactor: transactor,
	}
}

// Commit records the hashes together with the run report in one transaction.
func (r *Recorder) Commit(ctx context.Context, report *domain.RunReport, files []*domain.SeenFile) error {
	return r.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if len(files) > 0 {
			if err := r.hashStore.Record(ctx, files...); err != nil {
				return fmt.Errorf("failed to record content hashes: %w", err)
			}
		}

		if err := r.runSaver.SaveRun(ctx, report); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}

		r.log.DebugContext(ctx, "run committed",
			slog.String("run_id", report.RunID),
			slog.Int("hashes_count", len(files)),
		)

		return nil
	})
}

// SaveRun stores the final state of a run. Failures are logged, not returned:
// run history is informational.
func (r *Recorder) SaveRun(ctx context.Context, report *domain.RunReport) {
	if err := r.runSaver.SaveRun(ctx, report); err != nil {
		r.log.WarnContext(ctx, "failed to save run history",
			slog.String("run_id", report.RunID),
			slog.String("err", err.Error()),
		)
	}
}
