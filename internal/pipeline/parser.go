package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NormalizeContent returns the bytes a content hash is computed over. CSV text
// loses its BOM and has line endings unified so a file re-saved on another OS
// still dedups; XLSX archives are taken verbatim.
func NormalizeContent(format domain.Format, content []byte) []byte {
	if format != domain.FormatCSV {
		return content
	}

	content = bytes.TrimPrefix(content, utf8BOM)
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))
}

// ContentHash is the hex SHA-256 of the normalized attachment content.
func ContentHash(a *domain.Attachment) string {
	sum := sha256.Sum256(NormalizeContent(a.Format, a.Content))
	return hex.EncodeToString(sum[:])
}

// ParseTable reads an attachment into a header and raw records. A file with a
// header and no data, or no content at all, yields an empty table.
func ParseTable(a *domain.Attachment) (*domain.Table, error) {
	switch a.Format {
	case domain.FormatCSV:
		return parseCSV(a.Content)
	case domain.FormatXLSX:
		return parseXLSX(a.Content)
	default:
		return nil, fmt.Errorf("unsupported format %q", a.Format)
	}
}

func parseCSV(content []byte) (*domain.Table, error) {
	content = NormalizeContent(domain.FormatCSV, content)
	if !utf8.Valid(content) {
		return nil, errors.New("content is not valid UTF-8")
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &domain.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &domain.Table{Header: header}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record #%d: %w", len(table.Records)+1, err)
		}

		line, _ := reader.FieldPos(0)
		table.Records = append(table.Records, domain.Record{Line: line, Fields: fields})
	}

	return table, nil
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab in the first line.
func sniffDelimiter(content []byte) rune {
	first, _, _ := bytes.Cut(content, []byte("\n"))

	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(first, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}

	return best
}

func parseXLSX(content []byte) (_ *domain.Table, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &domain.Table{}, nil
	}
	sheet := sheets[0]

	// raw values keep numbers unformatted; date serials are converted below
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	dates := newDateCells(f, sheet)

	table := &domain.Table{}
	for i, row := range rows {
		if table.Header == nil {
			if !blank(row) {
				table.Header = row
			}
			continue
		}

		var fields []string
		for j, v := range row {
			fields = append(fields, dates.format(j+1, i+1, v))
		}

		table.Records = append(table.Records, domain.Record{Line: i + 1, Fields: fields})
	}

	return table, nil
}

// dateCells renders cells styled with a date number format as ISO dates.
type dateCells struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File, sheet string) *dateCells {
	d := &dateCells{
		f:      f,
		sheet:  sheet,
		styles: make(map[int]bool),
	}

	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}

	return d
}

func (d *dateCells) format(col, row int, value string) string {
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return value
	}

	styleID, err := d.f.GetCellStyle(d.sheet, cell)
	if err != nil || !d.isDateStyle(styleID) {
		return value
	}

	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return value
	}
	t = t.Round(time.Second)

	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

func (d *dateCells) isDateStyle(styleID int) bool {
	if isDate, ok := d.styles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := d.f.GetStyle(styleID); err == nil {
		isDate = isBuiltinDateFormat(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}

	d.styles[styleID] = isDate
	return isDate
}

// isBuiltinDateFormat reports whether a built-in number format id shows a date.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	default:
		return false
	}
}

// isDateFormatCode reports whether a custom format code has day or year tokens
// outside quoted literals and bracketed sections.
func isDateFormatCode(code string) bool {
	var quoted, bracketed bool

	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracketed = true
		case r == ']':
			bracketed = false
		case bracketed:
		case r == 'd' || r == 'y':
			return true
		}
	}

	return false
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
