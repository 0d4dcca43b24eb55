package pipeline_test

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/pipeline"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReporter_Publish_HappyPath(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	dataset := transform(t, csvAttachment("ventas.csv", salesCSV))

	mockReportGenerator := NewMockReportGenerator(t)
	mockReportGenerator.EXPECT().
		GenerateReport(
			filepath.Join("/tmp/out", "report.pdf"),
			"run-1",
			mock.MatchedBy(func(summary []domain.SummaryRow) bool {
				return len(summary) == 1 && summary[0].ValidRows == 1 && summary[0].InvalidRows == 1
			}),
			mock.MatchedBy(func(invalid []domain.InvalidRecord) bool {
				return len(invalid) == 1 && invalid[0].Reason == string(domain.ReasonRuleViolation)
			}),
		).
		Return(nil)

	reporter := pipeline.NewReporter(log, "/tmp/out", mockReportGenerator)

	require.NoError(t, reporter.Publish(t.Context(), "run-1", dataset))
}

func TestReporter_Publish_EmptyDataset(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	// an empty run still replaces the previous report
	mockReportGenerator := NewMockReportGenerator(t)
	mockReportGenerator.EXPECT().
		GenerateReport(mock.Anything, "run-2", mock.Anything, mock.Anything).
		Return(nil)

	reporter := pipeline.NewReporter(log, t.TempDir(), mockReportGenerator)

	require.NoError(t, reporter.Publish(t.Context(), "run-2", &domain.CombinedDataset{}))
}

func TestReporter_Publish_GeneratorError(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)
	boom := errors.New("font not found")

	mockReportGenerator := NewMockReportGenerator(t)
	mockReportGenerator.EXPECT().
		GenerateReport(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(boom)

	reporter := pipeline.NewReporter(log, t.TempDir(), mockReportGenerator)

	err := reporter.Publish(t.Context(), "run-3", &domain.CombinedDataset{})
	require.ErrorIs(t, err, boom)
}
