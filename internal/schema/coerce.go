package schema

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	time.RFC3339,
	time.DateTime,
}

// Coerce converts the raw cells of row into typed values following its category
// schema. Cells that are empty or cannot be converted are left out of Values;
// the validator reports them. Derived columns are computed last.
func (r *Registry) Coerce(row *domain.Row) {
	c, ok := r.byName[row.Category]
	if !ok {
		for col, raw := range row.Raw {
			if v := strings.TrimSpace(raw); v != "" {
				row.Values[col] = v
			}
		}
		return
	}

	for col, raw := range row.Raw {
		column, ok := c.columns[col]
		if !ok {
			column = Column{Name: col, Type: TypeString}
		}

		v, err := CoerceValue(raw, column)
		if err != nil || v == nil {
			continue
		}
		row.Values[col] = v
	}

	for _, d := range c.Derive {
		derive(row, d)
	}
}

func derive(row *domain.Row, d Derive) {
	if row.Has(d.Column) {
		return
	}

	result := decimal.NewFromInt(1)
	for _, f := range d.Product {
		v, ok := row.Decimal(f)
		if !ok {
			return
		}
		result = result.Mul(v)
	}

	row.Columns = append(row.Columns, d.Column)
	row.Raw[d.Column] = result.String()
	row.Values[d.Column] = result
}

// CoerceValue converts a raw cell into the Go value for the column type:
// string, decimal.Decimal (integer and number) or time.Time. Empty cells yield nil.
func CoerceValue(raw string, col Column) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}

	switch col.Type {
	case TypeInteger:
		d, err := ParseNumber(s)
		if err != nil {
			return nil, err
		}
		if !d.IsInteger() {
			return nil, fmt.Errorf("%q is not an integer", s)
		}
		return d, nil
	case TypeNumber:
		return ParseNumber(s)
	case TypeDate:
		return ParseDate(s)
	default:
		if col.Lower {
			s = strings.ToLower(s)
		}
		return s, nil
	}
}

// ParseNumber accepts plain and locale formatted numbers: "30", "30.5", "30,50",
// "1.234,50", "1,234.50" and "€ 1 234". With both separators present the last one
// is the decimal separator; a lone separator repeated several times groups thousands.
func ParseNumber(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '€', '$', '£', '%':
			return -1
		}
		return r
	}, s)

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case lastDot >= 0 && strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}

	return d, nil
}

var errNotDate = errors.New("unrecognized date format")

// ParseDate parses day-first and ISO dates.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", s, errNotDate)
}
