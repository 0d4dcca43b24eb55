package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategorySales     Category = "sales"
	CategoryLeads     Category = "leads"
	CategoryInventory Category = "inventory"
	CategoryFinance   Category = "finance"
	CategoryUnknown   Category = "unknown"
)

// Row is a single record with canonical column names tagged with its source.
type Row struct {
	SourceFile string
	Category   Category
	Line       int
	Columns    []string          // canonical columns in file order
	Raw        map[string]string // canonical column -> raw cell
	Values     map[string]any    // canonical column -> coerced value, absent if empty or not coercible
}

func NewRow(sourceFile string, category Category, line int) *Row {
	return &Row{
		SourceFile: sourceFile,
		Category:   category,
		Line:       line,
		Raw:        make(map[string]string),
		Values:     make(map[string]any),
	}
}

// Has reports whether the row carries the column at all, even empty.
func (r *Row) Has(column string) bool {
	_, ok := r.Raw[column]
	return ok
}

func (r *Row) Decimal(column string) (decimal.Decimal, bool) {
	d, ok := r.Values[column].(decimal.Decimal)
	return d, ok
}

// Format renders a column for text outputs. Coerced values win over raw cells.
func (r *Row) Format(column string) string {
	v, ok := r.Values[column]
	if !ok {
		return r.Raw[column]
	}

	switch val := v.(type) {
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	case time.Time:
		return val.Format(time.DateOnly)
	default:
		return fmt.Sprint(val)
	}
}
