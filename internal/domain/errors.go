package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindExtraction ErrorKind = "ExtractionError"
	KindParse      ErrorKind = "ParseError"
	KindValidation ErrorKind = "ValidationError"
	KindPublish    ErrorKind = "PublishError"
	KindStore      ErrorKind = "StoreError"
)

// Error is a run-level failure tagged with the pipeline step it came from.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
