package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

const reportFilename = "report.pdf"

// Reporter renders the printable run summary into the output directory.
type Reporter struct {
	log             *slog.Logger
	outputDir       string
	reportGenerator ReportGenerator
}

func NewReporter(log *slog.Logger, outputDir string, reportGenerator ReportGenerator) *Reporter {
	return &Reporter{
		log:             log,
		outputDir:       outputDir,
		reportGenerator: reportGenerator,
	}
}

func (r *Reporter) Publish(ctx context.Context, runID string, dataset *domain.CombinedDataset) error {
	path := filepath.Join(r.outputDir, reportFilename)

	r.log.DebugContext(ctx, "generating run report", slog.String("path", path))

	if err := r.reportGenerator.GenerateReport(path, runID, dataset.Summary(), dataset.InvalidRecords()); err != nil {
		return fmt.Errorf("failed to generate report %q: %w", path, err)
	}

	return nil
}
