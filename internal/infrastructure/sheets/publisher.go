package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/google"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/retry"
	"google.golang.org/api/sheets/v4"
)

const valueInputRaw = "RAW"

// Publisher writes the dataset sections to tabs of one spreadsheet. Every tab
// is cleared before it is written, so publishing the same run twice leaves
// the same content.
type Publisher struct {
	log    *slog.Logger
	svc    *sheets.Service
	title  string
	policy retry.Policy

	mu            sync.Mutex
	spreadsheetID string
}

// NewPublisher creates a publisher for spreadsheetID. With an empty id a
// spreadsheet named title is created on the first publish and reused after.
func NewPublisher(log *slog.Logger, svc *sheets.Service, spreadsheetID, title string) *Publisher {
	return &Publisher{
		log:           log,
		svc:           svc,
		title:         title,
		policy:        google.RetryPolicy,
		spreadsheetID: spreadsheetID,
	}
}

func (p *Publisher) Publish(ctx context.Context, runID string, dataset *domain.CombinedDataset) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.ensureSpreadsheet(ctx)
	if err != nil {
		return err
	}

	sections := dataset.Sections()

	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.Name)
	}

	if err := p.ensureTabs(ctx, id, names); err != nil {
		return err
	}

	err = p.do(ctx, "sheets clear tabs", func(ctx context.Context) error {
		_, err := p.svc.Spreadsheets.Values.BatchClear(id, &sheets.BatchClearValuesRequest{Ranges: names}).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear tabs: %w", err)
	}

	data := make([]*sheets.ValueRange, 0, len(sections))
	for _, s := range sections {
		data = append(data, &sheets.ValueRange{
			Range:  s.Name + "!A1",
			Values: values(s),
		})
	}

	err = p.do(ctx, "sheets write tabs", func(ctx context.Context) error {
		_, err := p.svc.Spreadsheets.Values.BatchUpdate(id, &sheets.BatchUpdateValuesRequest{
			ValueInputOption: valueInputRaw,
			Data:             data,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write tabs: %w", err)
	}

	p.log.InfoContext(ctx, "spreadsheet updated",
		slog.String("run_id", runID),
		slog.String("spreadsheet_id", id),
	)

	return nil
}

func (p *Publisher) ensureSpreadsheet(ctx context.Context) (string, error) {
	if p.spreadsheetID != "" {
		return p.spreadsheetID, nil
	}

	var created *sheets.Spreadsheet
	err := p.do(ctx, "sheets create spreadsheet", func(ctx context.Context) (err error) {
		created, err = p.svc.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{Title: p.title},
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet %q: %w", p.title, err)
	}

	p.spreadsheetID = created.SpreadsheetId

	p.log.InfoContext(ctx, "spreadsheet created",
		slog.String("title", p.title),
		slog.String("spreadsheet_id", p.spreadsheetID),
	)

	return p.spreadsheetID, nil
}

func (p *Publisher) ensureTabs(ctx context.Context, id string, names []string) error {
	var meta *sheets.Spreadsheet
	err := p.do(ctx, "sheets get spreadsheet", func(ctx context.Context) (err error) {
		meta, err = p.svc.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet %q: %w", id, err)
	}

	existing := make(map[string]bool, len(meta.Sheets))
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	var requests []*sheets.Request
	for _, name := range names {
		if !existing[name] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: name}},
			})
		}
	}

	if len(requests) == 0 {
		return nil
	}

	err = p.do(ctx, "sheets add tabs", func(ctx context.Context) error {
		_, err := p.svc.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add tabs: %w", err)
	}

	return nil
}

func (p *Publisher) do(ctx context.Context, op string, fn retry.Func) error {
	return retry.Do(ctx, p.log, p.policy, op, fn)
}

func values(s domain.Section) [][]any {
	out := make([][]any, 0, len(s.Rows)+1)
	out = append(out, cells(s.Header))
	for _, r := range s.Rows {
		out = append(out, cells(r))
	}
	return out
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
