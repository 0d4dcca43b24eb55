package domain

import "strconv"

const (
	SectionClean   = "raw_clean"
	SectionSummary = "summary"
	SectionInvalid = "invalid"
)

// Section is a named table of text cells, one per output tab or sheet.
type Section struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Sections renders the dataset as the clean, summary and invalid tables.
// All three are always present so re-publishing overwrites stale content.
func (d *CombinedDataset) Sections() []Section {
	return []Section{d.cleanSection(), d.summarySection(), d.invalidSection()}
}

func (d *CombinedDataset) cleanSection() Section {
	columns := d.ValidColumns()

	s := Section{
		Name:   SectionClean,
		Header: append([]string{"source_file", "category"}, columns...),
		Rows:   make([][]string, 0, len(d.Valid)),
	}

	for _, r := range d.Valid {
		row := make([]string, 0, len(s.Header))
		row = append(row, r.SourceFile, string(r.Category))
		for _, c := range columns {
			row = append(row, r.Format(c))
		}
		s.Rows = append(s.Rows, row)
	}

	return s
}

func (d *CombinedDataset) summarySection() Section {
	summary := d.Summary()

	s := Section{
		Name:   SectionSummary,
		Header: []string{"source_file", "category", "valid_rows", "invalid_rows"},
		Rows:   make([][]string, 0, len(summary)),
	}

	for _, r := range summary {
		s.Rows = append(s.Rows, []string{
			r.SourceFile,
			string(r.Category),
			strconv.Itoa(r.ValidRows),
			strconv.Itoa(r.InvalidRows),
		})
	}

	return s
}

func (d *CombinedDataset) invalidSection() Section {
	records := d.InvalidRecords()

	s := Section{
		Name:   SectionInvalid,
		Header: []string{"source_file", "category", "line", "reason", "details", "data"},
		Rows:   make([][]string, 0, len(records)),
	}

	for _, r := range records {
		line := ""
		if r.Line > 0 {
			line = strconv.Itoa(r.Line)
		}
		s.Rows = append(s.Rows, []string{r.SourceFile, string(r.Category), line, r.Reason, r.Details, r.Data})
	}

	return s
}
