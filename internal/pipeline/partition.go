package pipeline

import (
	"slices"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

// Partition validates every row and splits rows into the valid and invalid sets.
// Categories are merged in the given order, followed by any category not listed;
// rows keep their input order within a category.
func Partition(rows map[domain.Category][]*domain.Row, order []domain.Category, validator RowValidator) *domain.CombinedDataset {
	dataset := &domain.CombinedDataset{}

	for _, category := range mergeOrder(rows, order) {
		for _, row := range rows[category] {
			result := validator.Validate(row)
			if result.Valid {
				dataset.Valid = append(dataset.Valid, row)
				continue
			}

			dataset.Invalid = append(dataset.Invalid, &domain.InvalidRow{Row: row, Result: result})
		}
	}

	return dataset
}

func mergeOrder(rows map[domain.Category][]*domain.Row, order []domain.Category) []domain.Category {
	merged := slices.Clone(order)

	var rest []domain.Category
	for category := range rows {
		if !slices.Contains(merged, category) {
			rest = append(rest, category)
		}
	}
	slices.Sort(rest)

	return append(merged, rest...)
}
