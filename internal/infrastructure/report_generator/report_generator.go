package report_generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

const (
	rowHeight      = 6
	maxDetailsLen  = 80
	maxInvalidRows = 500
)

var (
	titleStyle  = props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center}
	headerStyle = props.Text{Size: 9, Style: fontstyle.Bold, Top: 1}
	cellStyle   = props.Text{Size: 8, Top: 1}
)

type ReportGenerator struct {
	now func() time.Time
}

func New() *ReportGenerator {
	return &ReportGenerator{now: time.Now}
}

// GenerateReport renders the per-file summary and the invalid rows of a run
// into a PDF at outputPath.
func (g *ReportGenerator) GenerateReport(
	outputPath, runID string,
	summary []domain.SummaryRow,
	invalid []domain.InvalidRecord,
) error {
	cfg := config.NewBuilder().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10, text.NewCol(12, "Auto-Reporting run "+runID, titleStyle))
	m.AddRow(rowHeight, text.NewCol(12, "Generated at "+g.now().UTC().Format(time.RFC3339), props.Text{Size: 8, Align: align.Center}))
	m.AddRow(rowHeight)

	m.AddRow(8, text.NewCol(12, "Summary", props.Text{Size: 11, Style: fontstyle.Bold}))
	m.AddRows(tableRow(headerStyle, []int{6, 2, 2, 2}, "Source file", "Category", "Valid", "Invalid"))

	validTotal, invalidTotal := 0, 0
	for _, s := range summary {
		m.AddRows(tableRow(cellStyle, []int{6, 2, 2, 2},
			s.SourceFile, string(s.Category), strconv.Itoa(s.ValidRows), strconv.Itoa(s.InvalidRows)))
		validTotal += s.ValidRows
		invalidTotal += s.InvalidRows
	}
	m.AddRows(tableRow(headerStyle, []int{6, 2, 2, 2}, "Total", "", strconv.Itoa(validTotal), strconv.Itoa(invalidTotal)))

	if len(invalid) > 0 {
		m.AddRow(rowHeight)
		m.AddRow(8, text.NewCol(12, "Invalid rows and rejected files", props.Text{Size: 11, Style: fontstyle.Bold}))
		m.AddRows(tableRow(headerStyle, []int{3, 1, 2, 6}, "Source file", "Line", "Reason", "Details"))

		for i, r := range invalid {
			if i == maxInvalidRows {
				m.AddRow(rowHeight, text.NewCol(12,
					fmt.Sprintf("... and %d more, see invalid.csv", len(invalid)-maxInvalidRows), cellStyle))
				break
			}

			line := ""
			if r.Line > 0 {
				line = strconv.Itoa(r.Line)
			}
			m.AddRows(tableRow(cellStyle, []int{3, 1, 2, 6}, r.SourceFile, line, r.Reason, truncate(r.Details, maxDetailsLen)))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate pdf: %w", err)
	}

	return save(outputPath, doc.GetBytes())
}

func tableRow(style props.Text, sizes []int, values ...string) core.Row {
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		cols = append(cols, text.NewCol(sizes[i], v, style))
	}
	return row.New(rowHeight).Add(cols...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace report: %w", err)
	}

	return nil
}
