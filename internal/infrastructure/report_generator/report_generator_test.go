package report_generator_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/report_generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportGenerator_GenerateReport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "report.pdf")

	err := report_generator.New().GenerateReport(path, "run-1",
		[]domain.SummaryRow{
			{SourceFile: "ventas.csv", Category: domain.CategorySales, ValidRows: 10, InvalidRows: 1},
		},
		[]domain.InvalidRecord{
			{SourceFile: "ventas.csv", Category: domain.CategorySales, Line: 4, Reason: "rule_violation", Details: "expected total 30, got 31"},
			{SourceFile: "broken.csv", Reason: "parse_error", Details: "invalid UTF-8"},
		},
	)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = os.Stat(path + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReportGenerator_GenerateReport_Empty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.pdf")

	require.NoError(t, report_generator.New().GenerateReport(path, "run-2", nil, nil))
	assert.FileExists(t, path)
}
