package qasm

import (
	"errors"
	"fmt"
)

// ParseError reports source text the front end cannot turn into a circuit.
type ParseError struct {
	// Line is 1-based, or 0 when the problem is not tied to one line.
	Line    int
	Message string
	// Err is the underlying IR or catalog error, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("qasm: %s", e.Message)
	}
	return fmt.Sprintf("qasm: line %d: %s", e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Message: fmt.Sprintf(format, args...)}
}
