package analysis

import (
	"errors"
	"fmt"
)

// ErrAnalysisParse matches every *ParseError via errors.Is.
var ErrAnalysisParse = errors.New("failed to parse analysis response")

type ParseErrorKind int

const (
	ParseErrorEmpty ParseErrorKind = iota + 1
	ParseErrorMalformed
	ParseErrorNotObject
)

func (k ParseErrorKind) String() string {
	switch k {
	case ParseErrorEmpty:
		return "empty response"
	case ParseErrorMalformed:
		return "malformed json"
	case ParseErrorNotObject:
		return "not a json object"
	default:
		return "unknown"
	}
}

// ParseError reports model output that could not be read as a single JSON
// object after fence stripping.
type ParseError struct {
	Kind ParseErrorKind
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrAnalysisParse, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrAnalysisParse, e.Kind)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAnalysisParse}
	}
	return []error{ErrAnalysisParse, e.Err}
}
