package ir

import (
	"errors"
	"fmt"
)

// MalformedCircuitError reports a circuit invariant violation.
type MalformedCircuitError struct {
	// Index is the offending gate's position, or -1 for circuit-level problems.
	Index  int
	Gate   string
	Reason string
}

func (e *MalformedCircuitError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed circuit: %s", e.Reason)
	}
	return fmt.Sprintf("malformed circuit: gate %d (%s): %s", e.Index, e.Gate, e.Reason)
}

// IsMalformed reports whether err wraps a *MalformedCircuitError.
func IsMalformed(err error) bool {
	var me *MalformedCircuitError
	return errors.As(err, &me)
}

func malformed(index int, gate, format string, args ...any) *MalformedCircuitError {
	return &MalformedCircuitError{Index: index, Gate: gate, Reason: fmt.Sprintf(format, args...)}
}
