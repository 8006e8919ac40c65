package harness

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/lower"
	"github.com/roach88/qcanvas/internal/passes"
	"github.com/roach88/qcanvas/internal/stats"
)

// AssertionError is returned when an expectation fails.
// It includes the optimized gate list to help debug the failure.
type AssertionError struct {
	Type     string   // Expectation kind for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Gates    []string // Optimized gate names for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Gates != nil {
		fmt.Fprintf(&buf, "\nGates:\n")
		for i, g := range e.Gates {
			fmt.Fprintf(&buf, "  [%d] %s\n", i, g)
		}
	}

	return buf.String()
}

// evaluate checks a result against the scenario's expectations. All
// mismatches are joined so a single run reports every failure.
func evaluate(expect ExpectClause, result *Result) error {
	if expect.Error != nil {
		return assertError(*expect.Error, result.Err)
	}
	if result.Err != nil {
		return &AssertionError{
			Type:     "error",
			Expected: "no error",
			Actual:   result.Err.Error(),
			Gates:    result.Gates,
		}
	}

	var errs []error
	if expect.Gates != nil {
		errs = append(errs, assertGates(expect.Gates, result))
	}
	if expect.GateCounts != nil {
		errs = append(errs, assertGateCounts(expect.GateCounts, result))
	}
	if expect.Depth != nil {
		errs = append(errs, assertDepth(*expect.Depth, result))
	}
	return errors.Join(errs...)
}

// assertGates checks the optimized gate-name sequence exactly.
func assertGates(want []string, result *Result) error {
	if slices.Equal(want, result.Gates) {
		return nil
	}
	return &AssertionError{
		Type:     "gates",
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", result.Gates),
		Gates:    result.Gates,
	}
}

// assertGateCounts checks the histogram exactly; a name with count zero is
// the same as an absent name.
func assertGateCounts(want map[string]int, result *Result) error {
	got := result.Stats.GateCounts
	if maps.EqualFunc(nonZero(want), nonZero(got), func(a, b int) bool { return a == b }) {
		return nil
	}
	return &AssertionError{
		Type:     "gate_counts",
		Expected: formatCounts(want),
		Actual:   formatCounts(got),
		Gates:    result.Gates,
	}
}

func assertDepth(want int, result *Result) error {
	if result.Stats.Depth == want {
		return nil
	}
	return &AssertionError{
		Type:     "depth",
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", result.Stats.Depth),
		Gates:    result.Gates,
	}
}

// assertError checks that the pipeline failed with the expected kind.
func assertError(want ErrorClause, err error) error {
	if err == nil {
		return &AssertionError{
			Type:     "error",
			Expected: fmt.Sprintf("%s error", want.Kind),
			Actual:   "no error",
		}
	}
	if kind := ErrorKind(err); kind != want.Kind {
		return &AssertionError{
			Type:     "error",
			Expected: fmt.Sprintf("%s error", want.Kind),
			Actual:   fmt.Sprintf("%s error: %v", kindOrOther(kind), err),
		}
	}
	if want.Contains != "" && !strings.Contains(err.Error(), want.Contains) {
		return &AssertionError{
			Type:     "error",
			Expected: fmt.Sprintf("message containing %q", want.Contains),
			Actual:   err.Error(),
		}
	}
	return nil
}

// ErrorKind classifies a pipeline error as one of the Err* constants, or ""
// if it matches none.
//
// Unknown gates are checked before malformed circuits: both come out of
// circuit construction, and the gate name is the more specific diagnosis.
func ErrorKind(err error) string {
	var stale *stats.StaleError
	switch {
	case catalog.IsUnknownGate(err):
		return ErrUnknownGate
	case ir.IsMalformed(err):
		return ErrMalformed
	case passes.IsUnknownPass(err):
		return ErrUnknownPass
	case lower.IsUnsupported(err):
		return ErrUnsupported
	case errors.As(err, &stale):
		return ErrStaleStats
	}
	return ""
}

func kindOrOther(kind string) string {
	if kind == "" {
		return "other"
	}
	return kind
}

func nonZero(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}

// formatCounts renders a histogram with sorted keys for stable messages.
func formatCounts(m map[string]int) string {
	keys := slices.Sorted(maps.Keys(m))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%d", k, m[k])
	}
	return "{" + strings.Join(parts, " ") + "}"
}
