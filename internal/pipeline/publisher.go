package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

type NamedPublisher struct {
	Name string
	Publisher
}

// Publishers writes a dataset to every sink in order and stops at the first failure.
type Publishers struct {
	log   *slog.Logger
	sinks []NamedPublisher
}

func NewPublishers(log *slog.Logger, sinks ...NamedPublisher) *Publishers {
	return &Publishers{log: log, sinks: sinks}
}

func (p *Publishers) Publish(ctx context.Context, runID string, dataset *domain.CombinedDataset) error {
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, runID, dataset); err != nil {
			return fmt.Errorf("%s: %w", sink.Name, err)
		}

		p.log.InfoContext(ctx, "dataset published",
			slog.String("sink", sink.Name),
			slog.Int("valid_count", len(dataset.Valid)),
			slog.Int("invalid_count", len(dataset.Invalid)),
		)
	}

	return nil
}
