package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Target selects an output language for lowering.
type Target int

const (
	// TargetQASM3 is OpenQASM 3.0, the "assembly" target.
	TargetQASM3 Target = iota
	// TargetQASM2 is OpenQASM 2.0 with qelib1.inc.
	TargetQASM2
	// TargetPennyLane is a PennyLane Python script, the "script" target.
	TargetPennyLane
)

// Targets lists every supported target in declaration order.
var Targets = []Target{TargetQASM3, TargetQASM2, TargetPennyLane}

func (t Target) String() string {
	switch t {
	case TargetQASM3:
		return "qasm3"
	case TargetQASM2:
		return "qasm2"
	case TargetPennyLane:
		return "pennylane"
	default:
		return "unknown"
	}
}

// targetSelectors maps caller-facing selectors to targets.
// "assembly" and "script" are the generic selectors.
var targetSelectors = map[string]Target{
	"assembly":  TargetQASM3,
	"qasm3":     TargetQASM3,
	"qasm":      TargetQASM3,
	"qasm2":     TargetQASM2,
	"script":    TargetPennyLane,
	"pennylane": TargetPennyLane,
}

// UnknownTargetError reports a selector that names no target.
type UnknownTargetError struct {
	Selector string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target %q: must be one of assembly, script, qasm3, qasm2, pennylane", e.Selector)
}

// IsUnknownTarget reports whether err wraps an *UnknownTargetError.
func IsUnknownTarget(err error) bool {
	var ut *UnknownTargetError
	return errors.As(err, &ut)
}

// ParseTarget resolves a target selector (case-insensitive).
// A miss returns *UnknownTargetError.
func ParseTarget(s string) (Target, error) {
	t, ok := targetSelectors[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, &UnknownTargetError{Selector: s}
	}
	return t, nil
}
