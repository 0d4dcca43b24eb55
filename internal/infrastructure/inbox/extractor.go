package inbox

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

const Source = "inbox"

// Extractor reads attachments dropped into a local directory. Only .csv and
// .xlsx files are picked up; subdirectories are not descended into.
type Extractor struct {
	log *slog.Logger
	dir string
}

func NewExtractor(log *slog.Logger, dir string) *Extractor {
	return &Extractor{
		log: log,
		dir: dir,
	}
}

// Extract yields the directory's attachments in filename order. The query is
// a mail search expression and has no meaning for a directory.
func (e *Extractor) Extract(ctx context.Context, _ string) iter.Seq2[*domain.Attachment, error] {
	return func(yield func(*domain.Attachment, error) bool) {
		entries, err := os.ReadDir(e.dir)
		if err != nil {
			yield(nil, fmt.Errorf("failed to read directory %q: %w", e.dir, err))
			return
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			attachment, err := e.processEntry(entry)
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if attachment == nil {
				continue
			}

			if !yield(attachment, nil) {
				return
			}
		}
	}
}

func (e *Extractor) processEntry(entry os.DirEntry) (*domain.Attachment, error) {
	if entry.IsDir() {
		return nil, nil
	}

	format, ok := domain.FormatFromFilename(entry.Name())
	if !ok {
		e.log.Debug("skipping unsupported file", slog.String("filename", entry.Name()))
		return nil, nil
	}

	path := filepath.Join(e.dir, entry.Name())

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	return &domain.Attachment{
		Filename:  entry.Name(),
		MessageID: path,
		Source:    Source,
		Format:    format,
		Content:   content,
	}, nil
}
