package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

// Log writes the message to the application log. It is the fallback when no
// chat channel is configured.
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Notify(ctx context.Context, report *domain.RunReport) error {
	level := slog.LevelInfo
	switch report.Status {
	case domain.StatusWarning:
		level = slog.LevelWarn
	case domain.StatusError:
		level = slog.LevelError
	}

	l.log.Log(ctx, level, "run notification",
		slog.String("run_id", report.RunID),
		slog.String("message", Message(report)),
	)

	return nil
}

type Notifier interface {
	Notify(ctx context.Context, report *domain.RunReport) error
}

type Named struct {
	Name string
	Notifier
}

// Multi sends to every channel. A failing channel does not stop the others;
// the failures are joined into the returned error.
type Multi struct {
	log       *slog.Logger
	notifiers []Named
}

func NewMulti(log *slog.Logger, notifiers ...Named) *Multi {
	return &Multi{
		log:       log,
		notifiers: notifiers,
	}
}

func (m *Multi) Notify(ctx context.Context, report *domain.RunReport) error {
	var errs []error

	for _, n := range m.notifiers {
		if err := n.Notify(ctx, report); err != nil {
			m.log.WarnContext(ctx, "notifier failed",
				slog.String("notifier", n.Name),
				slog.String("err", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", n.Name, err))
			continue
		}

		m.log.DebugContext(ctx, "notification sent", slog.String("notifier", n.Name))
	}

	return errors.Join(errs...)
}

func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), secret, "<redacted>"))
}
