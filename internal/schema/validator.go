package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/shopspring/decimal"
)

// Validate checks row against its category schema. Checks run in a fixed order:
// each declared column (presence, then type) in schema order, then the rules in
// declaration order. All failures are collected; the first one is the row's reason.
func (r *Registry) Validate(row *domain.Row) domain.ValidationResult {
	result := domain.ValidationResult{Valid: true}

	c, ok := r.byName[row.Category]
	if !ok {
		result.Add(domain.Violation{
			Code:    domain.ReasonUnknownCategory,
			Message: fmt.Sprintf("columns %s match no known report category", strings.Join(row.Columns, ", ")),
		})
		return result
	}

	for _, col := range c.Columns {
		checkColumn(row, col, &result)
	}

	for _, rule := range c.Rules {
		if v, failed := checkRule(row, rule); failed {
			result.Add(v)
		}
	}

	return result
}

func checkColumn(row *domain.Row, col Column, result *domain.ValidationResult) {
	raw := strings.TrimSpace(row.Raw[col.Name])

	if raw == "" {
		if !col.Required {
			return
		}

		msg := "required value is empty"
		if !row.Has(col.Name) {
			msg = "required column is missing"
		}
		result.Add(domain.Violation{Code: domain.ReasonMissingField, Column: col.Name, Message: msg})
		return
	}

	if _, ok := row.Values[col.Name]; ok {
		return
	}

	_, err := CoerceValue(raw, col)
	msg := fmt.Sprintf("cannot read %q as %s", raw, col.Type)
	if err != nil {
		msg = fmt.Sprintf("expected %s: %v", col.Type, err)
	}
	result.Add(domain.Violation{Code: domain.ReasonTypeMismatch, Column: col.Name, Message: msg})
}

// checkRule evaluates a rule. Rules whose columns have no typed value are skipped:
// the missing or mistyped value has already been reported by the column checks.
func checkRule(row *domain.Row, rule Rule) (domain.Violation, bool) {
	violation := domain.Violation{Code: domain.ReasonRuleViolation, Column: rule.Column, Rule: rule.Name}

	switch rule.Kind {
	case RuleMin:
		v, ok := row.Decimal(rule.Column)
		if !ok || v.GreaterThanOrEqual(rule.min) {
			return violation, false
		}
		violation.Message = fmt.Sprintf("%s must be >= %s, got %s", rule.Column, rule.min, v)

	case RuleOneOf:
		v, ok := row.Values[rule.Column].(string)
		if !ok || slices.ContainsFunc(rule.Values, func(allowed string) bool { return strings.EqualFold(allowed, v) }) {
			return violation, false
		}
		violation.Message = fmt.Sprintf("%s must be one of %s, got %q", rule.Column, strings.Join(rule.Values, ", "), v)

	case RuleProductEquals:
		actual, ok := row.Decimal(rule.Column)
		if !ok {
			return violation, false
		}

		expected := decimal.NewFromInt(1)
		for _, op := range rule.Operands {
			v, ok := row.Decimal(op)
			if !ok {
				return violation, false
			}
			expected = expected.Mul(v)
		}

		if expected.Sub(actual).Abs().LessThanOrEqual(rule.tolerance) {
			return violation, false
		}
		violation.Message = fmt.Sprintf("expected %s %s (%s), got %s (tolerance %s)",
			rule.Column, expected, strings.Join(rule.Operands, " * "), actual, rule.tolerance)

	default:
		return violation, false
	}

	return violation, true
}
