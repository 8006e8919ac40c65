package catalog

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// UnknownGateError reports a gate name that is absent from the catalog.
type UnknownGateError struct {
	Name string
	// Index is the position of the offending gate in its circuit, or -1
	// when the lookup was not made on behalf of a circuit gate.
	Index int
}

func (e *UnknownGateError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("unknown gate %q at index %d", e.Name, e.Index)
	}
	return fmt.Sprintf("unknown gate %q", e.Name)
}

// UnknownGateAt returns an UnknownGateError tied to a gate index.
func UnknownGateAt(name string, index int) *UnknownGateError {
	return &UnknownGateError{Name: name, Index: index}
}

// IsUnknownGate reports whether err wraps an *UnknownGateError.
func IsUnknownGate(err error) bool {
	var ug *UnknownGateError
	return errors.As(err, &ug)
}

// CompileError represents a catalog definition error with source position.
type CompileError struct {
	Gate    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	field := e.Field
	if e.Gate != "" {
		field = "gate." + e.Gate + "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			field, e.Message)
	}
	return fmt.Sprintf("%s: %s", field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(gate, field string, err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Gate: gate, Field: field, Message: err.Error()}
	}

	first := errs[0]
	ce := &CompileError{Gate: gate, Field: field, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
