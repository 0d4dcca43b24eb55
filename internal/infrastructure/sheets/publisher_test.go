package sheets

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// fakeSheets serves the subset of the Sheets API the publisher uses.
type fakeSheets struct {
	t *testing.T

	mu          sync.Mutex
	tabs        []string
	created     int
	added       []string
	cleared     [][]string
	written     []*sheets.BatchUpdateValuesRequest
	failClears  int
	clearErrors int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v4/spreadsheets":
		f.created++
		f.reply(w, sheets.Spreadsheet{SpreadsheetId: "sid"})

	case r.Method == http.MethodGet && r.URL.Path == "/v4/spreadsheets/sid":
		meta := sheets.Spreadsheet{SpreadsheetId: "sid"}
		for _, tab := range f.tabs {
			meta.Sheets = append(meta.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: tab}})
		}
		f.reply(w, meta)

	case r.Method == http.MethodPost && r.URL.Path == "/v4/spreadsheets/sid:batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		for _, rq := range req.Requests {
			f.added = append(f.added, rq.AddSheet.Properties.Title)
			f.tabs = append(f.tabs, rq.AddSheet.Properties.Title)
		}
		f.reply(w, sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: "sid"})

	case r.Method == http.MethodPost && r.URL.Path == "/v4/spreadsheets/sid/values:batchClear":
		if f.clearErrors < f.failClears {
			f.clearErrors++
			http.Error(w, `{"error":{"code":503,"message":"unavailable"}}`, http.StatusServiceUnavailable)
			return
		}
		var req sheets.BatchClearValuesRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.cleared = append(f.cleared, req.Ranges)
		f.reply(w, sheets.BatchClearValuesResponse{SpreadsheetId: "sid"})

	case r.Method == http.MethodPost && r.URL.Path == "/v4/spreadsheets/sid/values:batchUpdate":
		var req sheets.BatchUpdateValuesRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.written = append(f.written, &req)
		f.reply(w, sheets.BatchUpdateValuesResponse{SpreadsheetId: "sid"})

	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	}
}

func (f *fakeSheets) reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(f.t, json.NewEncoder(w).Encode(v))
}

func newTestPublisher(t *testing.T, fake *fakeSheets, spreadsheetID string) *Publisher {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(t.Context(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	p := NewPublisher(slog.New(slog.DiscardHandler), svc, spreadsheetID, "Auto Report")
	p.policy.Delay = time.Millisecond
	p.policy.MaxDelay = time.Millisecond

	return p
}

func dataset() *domain.CombinedDataset {
	valid := domain.NewRow("ventas.csv", domain.CategorySales, 2)
	valid.Columns = []string{"producto", "cantidad"}
	valid.Raw["producto"] = "A"
	valid.Raw["cantidad"] = "3"

	invalid := domain.NewRow("ventas.csv", domain.CategorySales, 3)
	invalid.Columns = []string{"producto", "cantidad"}
	invalid.Raw["producto"] = "B"

	return &domain.CombinedDataset{
		Valid: []*domain.Row{valid},
		Invalid: []*domain.InvalidRow{{
			Row: invalid,
			Result: domain.ValidationResult{Violations: []domain.Violation{
				{Code: domain.ReasonMissingField, Column: "cantidad", Message: "required value is empty"},
			}},
		}},
	}
}

func TestPublisher_Publish_CreatesSpreadsheetAndTabs(t *testing.T) {
	t.Parallel()

	fake := &fakeSheets{t: t, tabs: []string{"Sheet1", domain.SectionSummary}}
	p := newTestPublisher(t, fake, "")

	require.NoError(t, p.Publish(t.Context(), "run-1", dataset()))

	assert.Equal(t, 1, fake.created)
	assert.Equal(t, []string{domain.SectionClean, domain.SectionInvalid}, fake.added)

	names := []string{domain.SectionClean, domain.SectionSummary, domain.SectionInvalid}
	require.Len(t, fake.cleared, 1)
	assert.Equal(t, names, fake.cleared[0])

	require.Len(t, fake.written, 1)
	req := fake.written[0]
	assert.Equal(t, valueInputRaw, req.ValueInputOption)
	require.Len(t, req.Data, 3)

	clean := req.Data[0]
	assert.Equal(t, domain.SectionClean+"!A1", clean.Range)
	require.Len(t, clean.Values, 2)
	assert.Equal(t, []any{"source_file", "category", "producto", "cantidad"}, clean.Values[0])
	assert.Equal(t, []any{"ventas.csv", "sales", "A", "3"}, clean.Values[1])

	summary := req.Data[1]
	assert.Equal(t, []any{"ventas.csv", "sales", "1", "1"}, summary.Values[1])

	invalid := req.Data[2]
	assert.Equal(t, domain.SectionInvalid+"!A1", invalid.Range)
	assert.Len(t, invalid.Values, 2)
}

func TestPublisher_Publish_ReusesSpreadsheet(t *testing.T) {
	t.Parallel()

	fake := &fakeSheets{t: t}
	p := newTestPublisher(t, fake, "")

	require.NoError(t, p.Publish(t.Context(), "run-1", dataset()))
	require.NoError(t, p.Publish(t.Context(), "run-2", dataset()))

	assert.Equal(t, 1, fake.created)
	assert.Len(t, fake.added, 3)
	assert.Len(t, fake.cleared, 2)
	assert.Len(t, fake.written, 2)
}

func TestPublisher_Publish_ConfiguredSpreadsheet(t *testing.T) {
	t.Parallel()

	fake := &fakeSheets{t: t, tabs: []string{domain.SectionClean, domain.SectionSummary, domain.SectionInvalid}}
	p := newTestPublisher(t, fake, "sid")

	require.NoError(t, p.Publish(t.Context(), "run-1", &domain.CombinedDataset{}))

	assert.Zero(t, fake.created)
	assert.Empty(t, fake.added)
	require.Len(t, fake.written, 1)
	for _, vr := range fake.written[0].Data {
		assert.Len(t, vr.Values, 1, "only the header is written for %s", vr.Range)
	}
}

func TestPublisher_Publish_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	fake := &fakeSheets{t: t, failClears: 2}
	p := newTestPublisher(t, fake, "sid")

	require.NoError(t, p.Publish(t.Context(), "run-1", dataset()))

	assert.Equal(t, 2, fake.clearErrors)
	assert.Len(t, fake.cleared, 1)
	assert.Len(t, fake.written, 1)
}
