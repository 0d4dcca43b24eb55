package filesink

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	CombinedCSV  = "combined.csv"
	InvalidCSV   = "invalid.csv"
	SummaryCSV   = "summary.csv"
	CombinedXLSX = "combined.xlsx"
)

// Publisher writes the dataset into outputDir. Each file is replaced as a
// whole, never appended to.
type Publisher struct {
	log       *slog.Logger
	outputDir string
}

func NewPublisher(log *slog.Logger, outputDir string) *Publisher {
	return &Publisher{
		log:       log,
		outputDir: outputDir,
	}
}

func (p *Publisher) Publish(ctx context.Context, runID string, dataset *domain.CombinedDataset) error {
	if err := os.MkdirAll(p.outputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory %q: %w", p.outputDir, err)
	}

	sections := dataset.Sections()

	files := []struct {
		name  string
		write func(w io.Writer) error
	}{
		{CombinedCSV, func(w io.Writer) error { return writeSection(w, sections[0]) }},
		{InvalidCSV, func(w io.Writer) error { return writeRecords(w, dataset.InvalidRecords()) }},
		{SummaryCSV, func(w io.Writer) error { return writeRecords(w, dataset.Summary()) }},
		{CombinedXLSX, func(w io.Writer) error { return writeWorkbook(w, sections) }},
	}

	for _, f := range files {
		path := filepath.Join(p.outputDir, f.name)

		if err := writeFile(path, f.write); err != nil {
			return fmt.Errorf("failed to write %q: %w", path, err)
		}

		p.log.DebugContext(ctx, "output written", slog.String("run_id", runID), slog.String("path", path))
	}

	return nil
}

// writeSection encodes a section with a dynamic header.
func writeSection(w io.Writer, s domain.Section) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(s.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(s.Rows); err != nil {
		return err
	}

	return cw.Error()
}

// writeRecords encodes csv-tagged structs. The header is written even when
// there are no records.
func writeRecords[T any](w io.Writer, records []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if len(records) == 0 {
		var zero T
		if err := enc.EncodeHeader(zero); err != nil {
			return fmt.Errorf("failed to encode header: %w", err)
		}
	} else if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

func writeWorkbook(w io.Writer, sections []domain.Section) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	for i, s := range sections {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", s.Name, err)
		}

		sw, err := f.NewStreamWriter(s.Name)
		if err != nil {
			return fmt.Errorf("failed to open sheet %q: %w", s.Name, err)
		}

		rows := append([][]string{s.Header}, s.Rows...)
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}

			values := make([]any, len(row))
			for c, v := range row {
				values[c] = v
			}

			if err := sw.SetRow(cell, values); err != nil {
				return fmt.Errorf("failed to write sheet %q: %w", s.Name, err)
			}
		}

		if err := sw.Flush(); err != nil {
			return fmt.Errorf("failed to flush sheet %q: %w", s.Name, err)
		}
	}

	f.SetActiveSheet(0)

	return f.Write(w)
}

// writeFile renders into memory, writes a temp file next to path and renames
// it over path.
func writeFile(path string, write func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}
