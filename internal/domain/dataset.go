package domain

import (
	"slices"
	"strings"
)

type InvalidRow struct {
	Row    *Row
	Result ValidationResult
}

// RejectedFile is an attachment that could not be parsed at all.
type RejectedFile struct {
	Filename string
	Hash     string
	Err      error
}

// CombinedDataset is the outcome of one run's processing step.
// Valid and Invalid are disjoint; every processed row is in exactly one of them.
type CombinedDataset struct {
	Valid    []*Row
	Invalid  []*InvalidRow
	Rejected []*RejectedFile
	Files    []*SeenFile // attachments that contributed rows or rejections
}

type SummaryRow struct {
	SourceFile  string   `csv:"source_file"`
	Category    Category `csv:"category"`
	ValidRows   int      `csv:"valid_rows"`
	InvalidRows int      `csv:"invalid_rows"`
}

// Summary aggregates row counts per source file and category in first-seen order.
func (d *CombinedDataset) Summary() []SummaryRow {
	type key struct {
		file     string
		category Category
	}

	idx := make(map[key]int)
	var summary []SummaryRow

	add := func(r *Row, valid bool) {
		k := key{r.SourceFile, r.Category}
		i, ok := idx[k]
		if !ok {
			i = len(summary)
			idx[k] = i
			summary = append(summary, SummaryRow{SourceFile: r.SourceFile, Category: r.Category})
		}
		if valid {
			summary[i].ValidRows++
		} else {
			summary[i].InvalidRows++
		}
	}

	for _, r := range d.Valid {
		add(r, true)
	}
	for _, r := range d.Invalid {
		add(r.Row, false)
	}

	return summary
}

// ValidColumns returns the union of canonical columns of valid rows, ordered by first appearance.
func (d *CombinedDataset) ValidColumns() []string {
	var columns []string
	for _, r := range d.Valid {
		for _, c := range r.Columns {
			if !slices.Contains(columns, c) {
				columns = append(columns, c)
			}
		}
	}
	return columns
}

type InvalidRecord struct {
	SourceFile string   `csv:"source_file"`
	Category   Category `csv:"category"`
	Line       int      `csv:"line,omitempty"`
	Reason     string   `csv:"reason"`
	Details    string   `csv:"details"`
	Data       string   `csv:"data"`
}

// InvalidRecords flattens invalid rows and rejected files into a single listing.
func (d *CombinedDataset) InvalidRecords() []InvalidRecord {
	records := make([]InvalidRecord, 0, len(d.Invalid)+len(d.Rejected))

	for _, inv := range d.Invalid {
		details := make([]string, 0, len(inv.Result.Violations))
		for _, v := range inv.Result.Violations {
			details = append(details, v.String())
		}

		data := make([]string, 0, len(inv.Row.Columns))
		for _, c := range inv.Row.Columns {
			data = append(data, c+"="+inv.Row.Raw[c])
		}

		records = append(records, InvalidRecord{
			SourceFile: inv.Row.SourceFile,
			Category:   inv.Row.Category,
			Line:       inv.Row.Line,
			Reason:     string(inv.Result.Reason().Code),
			Details:    strings.Join(details, "; "),
			Data:       strings.Join(data, "; "),
		})
	}

	for _, rej := range d.Rejected {
		records = append(records, InvalidRecord{
			SourceFile: rej.Filename,
			Reason:     string(ReasonParseError),
			Details:    rej.Err.Error(),
		})
	}

	return records
}
