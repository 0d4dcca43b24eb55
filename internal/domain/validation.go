package domain

import "fmt"

type ReasonCode string

const (
	ReasonMissingField    ReasonCode = "missing_field"
	ReasonTypeMismatch    ReasonCode = "type_mismatch"
	ReasonRuleViolation   ReasonCode = "rule_violation"
	ReasonUnknownCategory ReasonCode = "unknown_category"
	ReasonParseError      ReasonCode = "parse_error"
)

type Violation struct {
	Code    ReasonCode
	Column  string
	Rule    string
	Message string
}

func (v Violation) String() string {
	switch {
	case v.Rule != "":
		return fmt.Sprintf("%s[%s]: %s", v.Code, v.Rule, v.Message)
	case v.Column != "":
		return fmt.Sprintf("%s[%s]: %s", v.Code, v.Column, v.Message)
	default:
		return fmt.Sprintf("%s: %s", v.Code, v.Message)
	}
}

// ValidationResult holds every failed check of a row in evaluation order.
type ValidationResult struct {
	Valid      bool
	Violations []Violation
}

// Reason returns the first failed check, which is the row's reported reason.
func (r ValidationResult) Reason() Violation {
	if len(r.Violations) == 0 {
		return Violation{}
	}
	return r.Violations[0]
}

func (r *ValidationResult) Add(v Violation) {
	r.Valid = false
	r.Violations = append(r.Violations, v)
}
