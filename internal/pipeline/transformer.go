package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

type TransformResult struct {
	Fetched  int
	Deduped  int
	Rows     map[domain.Category][]*domain.Row
	Rejected []*domain.RejectedFile
	Files    []*domain.SeenFile // new content to record once the run is published
}

type Transformer struct {
	log         *slog.Logger
	schemas     Schemas
	store       HashStore
	failOpen    bool
	strictParse bool
}

type TransformerOption func(*Transformer)

// WithFailOpen treats attachments as unseen when the hash store cannot be read.
// The default is to abort the run.
func WithFailOpen(failOpen bool) TransformerOption {
	return func(t *Transformer) { t.failOpen = failOpen }
}

// WithStrictParse aborts the run on the first unparseable attachment instead of
// rejecting just that file.
func WithStrictParse(strict bool) TransformerOption {
	return func(t *Transformer) { t.strictParse = strict }
}

func NewTransformer(log *slog.Logger, schemas Schemas, store HashStore, opts ...TransformerOption) *Transformer {
	t := &Transformer{
		log:     log,
		schemas: schemas,
		store:   store,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Transform hashes, dedups, parses and normalizes attachments in order.
// Identical content is processed once, whether it was seen in an earlier run
// or earlier in this one.
func (t *Transformer) Transform(ctx context.Context, attachments []*domain.Attachment) (*TransformResult, error) {
	result := &TransformResult{
		Fetched: len(attachments),
		Rows:    make(map[domain.Category][]*domain.Row),
	}

	seen := make(map[string]bool, len(attachments))

	for _, a := range attachments {
		a.Hash = ContentHash(a)

		log := t.log.With(
			slog.String("filename", a.Filename),
			slog.String("hash", a.Hash),
		)

		duplicate, err := t.isDuplicate(ctx, log, a.Hash, seen)
		if err != nil {
			return nil, err
		}
		if duplicate {
			log.InfoContext(ctx, "duplicate content, skipping attachment")
			result.Deduped++
			continue
		}
		seen[a.Hash] = true

		result.Files = append(result.Files, &domain.SeenFile{
			Hash:        a.Hash,
			Filename:    a.Filename,
			FirstSeenAt: time.Now().UTC(),
		})

		table, err := ParseTable(a)
		if err != nil {
			parseErr := domain.NewError(domain.KindParse, a.Filename, err)
			if t.strictParse {
				return nil, parseErr
			}

			log.WarnContext(ctx, "rejecting unparseable attachment", slog.String("err", err.Error()))
			result.Rejected = append(result.Rejected, &domain.RejectedFile{
				Filename: a.Filename,
				Hash:     a.Hash,
				Err:      parseErr,
			})
			continue
		}

		category, rows := t.normalize(a.Filename, table)
		result.Rows[category] = append(result.Rows[category], rows...)

		log.DebugContext(ctx, "attachment normalized",
			slog.String("category", string(category)),
			slog.Int("rows_count", len(rows)),
		)
	}

	return result, nil
}

func (t *Transformer) isDuplicate(ctx context.Context, log *slog.Logger, hash string, seen map[string]bool) (bool, error) {
	if seen[hash] {
		return true, nil
	}

	exists, err := t.store.Exists(ctx, hash)
	if err != nil {
		if !t.failOpen {
			return false, domain.NewError(domain.KindStore, "check content hash", err)
		}

		log.WarnContext(ctx, "hash store unavailable, treating attachment as unseen", slog.String("err", err.Error()))
		return false, nil
	}

	return exists, nil
}

func (t *Transformer) normalize(filename string, table *domain.Table) (domain.Category, []*domain.Row) {
	header := t.schemas.CanonicalHeader(table.Header)

	columns := make([]string, 0, len(header))
	for _, c := range header {
		if c != "" {
			columns = append(columns, c)
		}
	}

	category := t.schemas.Detect(columns)

	rows := make([]*domain.Row, 0, len(table.Records))
	for _, rec := range table.Records {
		row := domain.NewRow(filename, category, rec.Line)
		row.Columns = append(row.Columns, columns...)

		for i, c := range header {
			if c == "" {
				continue
			}
			if i < len(rec.Fields) {
				row.Raw[c] = rec.Fields[i]
			} else {
				row.Raw[c] = ""
			}
		}

		t.schemas.Coerce(row)
		rows = append(rows, row)
	}

	return category, rows
}
