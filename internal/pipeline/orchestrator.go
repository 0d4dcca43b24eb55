package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

type RunRequest struct {
	RunID string `json:"run_id"`
	Query string `json:"query"` // mailbox query override
}

// Orchestrator drives one run through fetching, processing, publishing and
// notifying. Any failure moves the run to the error state; the remaining steps are
// skipped except notifying, which always runs.
type Orchestrator struct {
	log          *slog.Logger
	locker       RunLocker
	extractor    Extractor
	transformer  *Transformer
	schemas      Schemas
	publisher    Publisher
	recorder     *Recorder
	notifier     Notifier
	defaultQuery string
}

func NewOrchestrator(
	log *slog.Logger,
	locker RunLocker,
	extractor Extractor,
	transformer *Transformer,
	schemas Schemas,
	publisher Publisher,
	recorder *Recorder,
	notifier Notifier,
	defaultQuery string,
) *Orchestrator {
	return &Orchestrator{
		log:          log,
		locker:       locker,
		extractor:    extractor,
		transformer:  transformer,
		schemas:      schemas,
		publisher:    publisher,
		recorder:     recorder,
		notifier:     notifier,
		defaultQuery: defaultQuery,
	}
}

type run struct {
	log     *slog.Logger
	report  *domain.RunReport
	refresh func(ctx context.Context) error
}

func (r *run) enter(ctx context.Context, stage domain.Stage) {
	r.log.DebugContext(ctx, "run stage changed",
		slog.String("from", string(r.report.Stage)),
		slog.String("to", string(stage)),
	)
	r.report.Stage = stage

	if r.refresh != nil {
		if err := r.refresh(ctx); err != nil {
			r.log.WarnContext(ctx, "failed to refresh run lock",
				slog.String("stage", string(stage)),
				slog.String("err", err.Error()),
			)
		}
	}
}

func (r *run) fail(ctx context.Context, err error) {
	kind := domain.KindOf(err)

	r.log.ErrorContext(ctx, "run failed",
		slog.String("stage", string(r.report.Stage)),
		slog.String("kind", string(kind)),
		slog.String("err", err.Error()),
	)

	r.report.Status = domain.StatusError
	r.report.ErrorKind = string(kind)
	r.report.Message = err.Error()
	if r.report.Stage != domain.StageIdle {
		r.report.Message = fmt.Sprintf("%s failed: %v", r.report.Stage, err)
	}

	r.enter(ctx, domain.StageError)
}

// Run executes one pipeline run. It returns domain.ErrRunInProgress without
// running anything when another run holds the lock; every other failure is
// reported through the returned report.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*domain.RunReport, error) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if req.Query == "" {
		req.Query = o.defaultQuery
	}

	r := &run{
		log: o.log.With(slog.String("run_id", req.RunID)),
		report: &domain.RunReport{
			RunID:     req.RunID,
			Stage:     domain.StageIdle,
			StartedAt: time.Now().UTC(),
		},
	}

	release, err := o.locker.Acquire(ctx)
	if errors.Is(err, domain.ErrRunInProgress) {
		r.log.WarnContext(ctx, "run rejected, another run is in progress")
		return nil, err
	}
	if err != nil {
		r.fail(ctx, domain.NewError(domain.KindStore, "acquire run lock", err))
		o.finish(ctx, r)
		return r.report, nil
	}
	defer release()

	if refresher, ok := o.locker.(LockRefresher); ok {
		r.refresh = refresher.Refresh
	}

	r.log.InfoContext(ctx, "run started", slog.String("query", req.Query))

	if err := o.execute(ctx, r, req); err != nil {
		r.fail(ctx, err)
	}

	o.finish(ctx, r)

	return r.report, nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run, req RunRequest) error {
	r.enter(ctx, domain.StageFetching)

	attachments, err := o.fetch(ctx, req.Query)
	if err != nil {
		return err
	}

	r.enter(ctx, domain.StageProcessing)

	result, err := o.transformer.Transform(ctx, attachments)
	if err != nil {
		return err
	}

	order := append(o.schemas.Categories(), domain.CategoryUnknown)
	dataset := Partition(result.Rows, order, o.schemas)
	dataset.Rejected = result.Rejected
	dataset.Files = result.Files

	report := r.report
	report.Fetched = result.Fetched
	report.Deduped = result.Deduped
	report.Rejected = len(result.Rejected)
	report.Valid = len(dataset.Valid)
	report.Invalid = len(dataset.Invalid)

	r.log.InfoContext(ctx, "attachments processed",
		slog.Int("fetched", report.Fetched),
		slog.Int("deduped", report.Deduped),
		slog.Int("rejected", report.Rejected),
		slog.Int("valid", report.Valid),
		slog.Int("invalid", report.Invalid),
	)

	if len(result.Files) == 0 {
		r.log.InfoContext(ctx, "no new attachments, nothing to publish")
		return nil
	}

	r.enter(ctx, domain.StagePublishing)

	if err := o.publisher.Publish(ctx, report.RunID, dataset); err != nil {
		return domain.NewError(domain.KindPublish, "publish dataset", err)
	}
	report.Published = len(dataset.Valid)
	report.Status, report.Message = outcome(report)

	if err := o.recorder.Commit(ctx, report, result.Files); err != nil {
		return domain.NewError(domain.KindStore, "record run", err)
	}

	return nil
}

func (o *Orchestrator) fetch(ctx context.Context, query string) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment

	for a, err := range o.extractor.Extract(ctx, query) {
		if err != nil {
			if domain.KindOf(err) == "" {
				err = domain.NewError(domain.KindExtraction, "fetch attachments", err)
			}
			return nil, err
		}
		attachments = append(attachments, a)
	}

	return attachments, nil
}

// finish notifies and stores the final report. It runs even when ctx is
// already cancelled.
func (o *Orchestrator) finish(ctx context.Context, r *run) {
	ctx = context.WithoutCancel(ctx)
	report := r.report

	if report.Status != domain.StatusError {
		report.Status, report.Message = outcome(report)
	}

	r.enter(ctx, domain.StageNotifying)

	if err := o.notifier.Notify(ctx, report); err != nil {
		r.log.WarnContext(ctx, "failed to send notification", slog.String("err", err.Error()))
	}

	if report.Status == domain.StatusError {
		r.enter(ctx, domain.StageError)
	} else {
		r.enter(ctx, domain.StageIdle)
	}

	report.FinishedAt = time.Now().UTC()
	o.recorder.SaveRun(ctx, report)

	r.log.InfoContext(ctx, "run finished",
		slog.String("status", string(report.Status)),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
}

func outcome(report *domain.RunReport) (domain.Status, string) {
	newFiles := report.Fetched - report.Deduped

	switch {
	case report.Fetched == 0:
		return domain.StatusWarning, "no attachments matched the query"
	case newFiles == 0:
		return domain.StatusWarning, fmt.Sprintf("all %d attachment(s) were already processed", report.Fetched)
	case report.Invalid > 0 || report.Rejected > 0:
		return domain.StatusWarning, fmt.Sprintf(
			"published with warnings: %d file(s), %d valid row(s), %d invalid row(s), %d unreadable file(s)",
			newFiles, report.Valid, report.Invalid, report.Rejected,
		)
	default:
		return domain.StatusSuccess, fmt.Sprintf("pipeline OK: %d file(s), %d valid row(s)", newFiles, report.Valid)
	}
}
