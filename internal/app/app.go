package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/config"
	v1 "github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/controller/http/v1"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/filesink"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/gmail"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/google"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/inbox"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/notifier"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/report_generator"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/sheets"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/pipeline"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/repository/postgresql"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/repository/sqlite"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/schema"
	"golang.org/x/sync/errgroup"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{
		log: log,
		cfg: cfg,
	}
}

type runsStore interface {
	pipeline.RunSaver
	v1.RunsRepository
}

type storage struct {
	hashes pipeline.HashStore
	runs   runsStore
	tx     pipeline.Transactor
	locker pipeline.RunLocker
	close  func()
}

// RunOnce executes a single pipeline run and returns its report. A run that
// cannot be set up is notified and reported with error status like any other
// failed run.
func (a *App) RunOnce(ctx context.Context, req pipeline.RunRequest) (*domain.RunReport, error) {
	notify := a.notifier()

	store, err := a.openStorage(ctx)
	if err != nil {
		return a.setupFailed(ctx, notify, req.RunID, domain.NewError(domain.KindStore, "open storage", err)), nil
	}
	defer store.close()

	orchestrator, err := a.orchestrator(ctx, store, notify)
	if err != nil {
		return a.setupFailed(ctx, notify, req.RunID, err), nil
	}

	return orchestrator.Run(ctx, req)
}

// Serve exposes the pipeline over HTTP until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	notify := a.notifier()

	store, err := a.openStorage(ctx)
	if err != nil {
		err = domain.NewError(domain.KindStore, "open storage", err)
		a.setupFailed(ctx, notify, "", err)
		return err
	}
	defer store.close()

	orchestrator, err := a.orchestrator(ctx, store, notify)
	if err != nil {
		a.setupFailed(ctx, notify, "", err)
		return err
	}

	server := v1.NewServer(a.log, a.cfg.HTTP, orchestrator, store.runs)

	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		a.log.InfoContext(ctx, "starting http server", slog.String("addr", server.Addr()))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "server stopped with error", slog.String("err", err.Error()))

		return err
	}

	a.log.InfoContext(ctx, "server stopped gracefully")

	return nil
}

func (a *App) openStorage(ctx context.Context) (*storage, error) {
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		a.log.InfoContext(ctx, "establishing postgresql connection",
			slog.String("postgresql_host", a.cfg.PostgreSQL.Host),
			slog.String("postgresql_port", a.cfg.PostgreSQL.Port),
			slog.String("postgresql_dbname", a.cfg.PostgreSQL.DBName),
		)

		pool, err := postgresql.NewConnection(ctx, a.log, a.cfg.PostgreSQL)
		if err != nil {
			return nil, fmt.Errorf("failed to create db connection: %w", err)
		}

		return &storage{
			hashes: postgresql.NewHashStore(pool),
			runs:   postgresql.NewRunsRepository(pool),
			tx:     postgresql.NewTxManager(pool),
			locker: postgresql.NewRunLocker(a.log, pool),
			close:  pool.Close,
		}, nil

	case config.DriverSQLite:
		a.log.InfoContext(ctx, "opening sqlite database", slog.String("path", a.cfg.SQLitePath))

		db, err := sqlite.NewConnection(ctx, a.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}

		return &storage{
			hashes: sqlite.NewHashStore(db),
			runs:   sqlite.NewRunsRepository(db),
			tx:     sqlite.NewTxManager(db),
			locker: sqlite.NewRunLocker(a.log, db, a.cfg.LockTTL),
			close: func() {
				if err := db.Close(); err != nil {
					a.log.Warn("failed to close sqlite database", slog.String("err", err.Error()))
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
	}
}

// setupFailed reports a run that failed before the orchestrator could be built.
func (a *App) setupFailed(ctx context.Context, notify pipeline.Notifier, runID string, err error) *domain.RunReport {
	if runID == "" {
		runID = uuid.NewString()
	}

	now := time.Now().UTC()
	report := &domain.RunReport{
		RunID:      runID,
		Status:     domain.StatusError,
		Stage:      domain.StageError,
		ErrorKind:  string(domain.KindOf(err)),
		Message:    fmt.Sprintf("setup failed: %v", err),
		StartedAt:  now,
		FinishedAt: now,
	}

	a.log.ErrorContext(ctx, "run setup failed",
		slog.String("run_id", runID),
		slog.String("kind", report.ErrorKind),
		slog.String("err", err.Error()),
	)

	if err := notify.Notify(context.WithoutCancel(ctx), report); err != nil {
		a.log.WarnContext(ctx, "failed to send notification", slog.String("err", err.Error()))
	}

	return report
}

func (a *App) orchestrator(ctx context.Context, store *storage, notify pipeline.Notifier) (*pipeline.Orchestrator, error) {
	schemas, err := schema.Load(a.cfg.SchemasFile)
	if err != nil {
		return nil, domain.NewError(domain.KindValidation, "load schemas", err)
	}

	var client *http.Client
	if a.cfg.Source == config.SourceGmail || a.cfg.SheetsEnabled {
		client, err = a.googleClient(ctx)
		if err != nil {
			return nil, domain.NewError(domain.KindExtraction, "authorize google", err)
		}
	}

	extractor, err := a.extractor(ctx, client)
	if err != nil {
		return nil, domain.NewError(domain.KindExtraction, "build extractor", err)
	}

	publisher, err := a.publishers(ctx, client)
	if err != nil {
		return nil, domain.NewError(domain.KindPublish, "build publishers", err)
	}

	transformer := pipeline.NewTransformer(a.log, schemas, store.hashes,
		pipeline.WithFailOpen(a.cfg.FailOpen),
		pipeline.WithStrictParse(a.cfg.StrictParse),
	)
	recorder := pipeline.NewRecorder(a.log, store.hashes, store.runs, store.tx)

	return pipeline.NewOrchestrator(
		a.log,
		store.locker,
		extractor,
		transformer,
		schemas,
		publisher,
		recorder,
		notify,
		a.cfg.Query,
	), nil
}

func (a *App) googleClient(ctx context.Context) (*http.Client, error) {
	client, err := google.NewHTTPClient(ctx, a.cfg.CredentialsFile, a.cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}
	client.Timeout = a.cfg.Google.Timeout

	return client, nil
}

func (a *App) extractor(ctx context.Context, client *http.Client) (pipeline.Extractor, error) {
	switch a.cfg.Source {
	case config.SourceInbox:
		a.log.InfoContext(ctx, "reading attachments from inbox", slog.String("dir", a.cfg.InboxDir))

		return inbox.NewExtractor(a.log, a.cfg.InboxDir), nil

	case config.SourceGmail:
		svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			return nil, fmt.Errorf("failed to create gmail service: %w", err)
		}

		a.log.InfoContext(ctx, "reading attachments from gmail", slog.String("user", a.cfg.User))

		return gmail.NewExtractor(a.log, svc, a.cfg.User, a.cfg.ArchiveDir), nil

	default:
		return nil, fmt.Errorf("unknown source %q", a.cfg.Source)
	}
}

func (a *App) publishers(ctx context.Context, client *http.Client) (*pipeline.Publishers, error) {
	sinks := []pipeline.NamedPublisher{
		{Name: "files", Publisher: filesink.NewPublisher(a.log, a.cfg.OutputDir)},
		{Name: "report", Publisher: pipeline.NewReporter(a.log, a.cfg.OutputDir, report_generator.New())},
	}

	if a.cfg.SheetsEnabled {
		svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets service: %w", err)
		}

		sinks = append(sinks, pipeline.NamedPublisher{
			Name:      "sheets",
			Publisher: sheets.NewPublisher(a.log, svc, a.cfg.SpreadsheetID, a.cfg.SpreadsheetTitle),
		})
	}

	return pipeline.NewPublishers(a.log, sinks...), nil
}

func (a *App) notifier() pipeline.Notifier {
	var channels []notifier.Named

	if a.cfg.SlackWebhook != "" {
		channels = append(channels, notifier.Named{
			Name:     "slack",
			Notifier: notifier.NewSlack(a.cfg.SlackWebhook, a.cfg.Notify.Timeout),
		})
	}

	if a.cfg.TelegramToken != "" && a.cfg.TelegramChatID != "" {
		telegram, err := notifier.NewTelegram(a.cfg.TelegramToken, a.cfg.TelegramChatID, a.cfg.Notify.Timeout)
		if err != nil {
			a.log.Warn("telegram notifications disabled", slog.String("err", err.Error()))
		} else {
			channels = append(channels, notifier.Named{Name: "telegram", Notifier: telegram})
		}
	}

	if len(channels) == 0 {
		return notifier.NewLog(a.log)
	}

	return notifier.NewMulti(a.log, channels...)
}
