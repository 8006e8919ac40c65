package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/store"
)

func gate(name string, targets, controls []int, params ...any) ir.GateRecord {
	g := ir.GateRecord{Name: name, Targets: targets, Controls: controls, Parameters: []ir.ParamRecord{}}
	for _, p := range params {
		switch v := p.(type) {
		case float64:
			g.Parameters = append(g.Parameters, ir.ParamRecord{Param: ir.Numeric(v)})
		case string:
			g.Parameters = append(g.Parameters, ir.ParamRecord{Param: ir.MustSymbolic(v)})
		}
	}
	return g
}

func intPtr(n int) *int { return &n }

// concreteScenario is H, H, CX, RX(pi/2) reduced by remove_self_inverse_pairs.
func concreteScenario() *Scenario {
	return &Scenario{
		Name:        "concrete_scenario",
		Description: "Adjacent Hadamards cancel",
		Circuit: ir.Record{
			NumQubits: 2,
			Gates: []ir.GateRecord{
				gate("h", []int{0}, []int{}),
				gate("h", []int{0}, []int{}),
				gate("cx", []int{1}, []int{0}),
				gate("rx", []int{0}, []int{}, "pi/2"),
			},
		},
		Passes:  []string{"remove_self_inverse_pairs"},
		Targets: []string{"assembly"},
		Expect: ExpectClause{
			Gates:      []string{"cx", "rx"},
			GateCounts: map[string]int{"cx": 1, "rx": 1},
			Depth:      intPtr(2),
		},
	}
}

func TestRun_ConcreteScenario(t *testing.T) {
	result, err := Run(concreteScenario())
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, []string{"cx", "rx"}, result.Gates)
	assert.Equal(t, ir.Stats{GateCounts: map[string]int{"cx": 1, "rx": 1}, Depth: 2}, result.Stats)
	assert.Contains(t, result.Outputs, "qasm3")
	assert.Contains(t, result.Outputs["qasm3"], "rx(pi/2) q[0];")

	require.NotNil(t, result.Circuit())
	assert.Equal(t, 2, result.Circuit().Len())
}

func TestRun_RecordsRunDeterministically(t *testing.T) {
	first, err := Run(concreteScenario())
	require.NoError(t, err)
	second, err := Run(concreteScenario())
	require.NoError(t, err)

	assert.Equal(t, first.Run, second.Run, "each scenario gets a fresh store")
	assert.Equal(t, store.Run{
		ID:          "run-0001",
		InputID:     first.Run.InputID,
		OutputID:    first.Run.OutputID,
		Passes:      []string{"remove_self_inverse_pairs"},
		GatesBefore: 4,
		GatesAfter:  2,
		DepthBefore: 4,
		DepthAfter:  2,
		Seq:         3,
	}, first.Run)
	assert.NotEqual(t, first.Run.InputID, first.Run.OutputID)
}

func TestRun_NoPassesKeepsCircuit(t *testing.T) {
	s := concreteScenario()
	s.Passes = nil
	s.Expect = ExpectClause{Gates: []string{"h", "h", "cx", "rx"}, Depth: intPtr(4)}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, result.Run.InputID, result.Run.OutputID)
}

func TestRun_ExpectationMismatch(t *testing.T) {
	s := concreteScenario()
	s.Expect.Gates = []string{"rx"}
	s.Expect.GateCounts = map[string]int{"cx": 2}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1, "mismatches are joined into one message")
	assert.Contains(t, result.Errors[0], "Assertion failed: gates")
	assert.Contains(t, result.Errors[0], "Assertion failed: gate_counts")
	assert.Contains(t, result.Errors[0], "{cx:2}")
}

func TestRun_UnexpectedError(t *testing.T) {
	s := concreteScenario()
	s.Passes = []string{"no_such_pass"}

	result, err := Run(s)
	require.NoError(t, err, "pipeline errors are reported through the result")
	assert.False(t, result.Pass)
	assert.Nil(t, result.Circuit())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `unknown pass "no_such_pass"`)
}

func TestRun_ExpectedErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scenario)
		kind   string
	}{
		{
			name: "unknown gate",
			mutate: func(s *Scenario) {
				s.Circuit.Gates = append(s.Circuit.Gates, gate("fredkin2", []int{0}, []int{}))
			},
			kind: ErrUnknownGate,
		},
		{
			name:   "malformed",
			mutate: func(s *Scenario) { s.Circuit.Gates[0].Targets = []int{5} },
			kind:   ErrMalformed,
		},
		{
			name:   "unknown pass",
			mutate: func(s *Scenario) { s.Passes = append(s.Passes, "fuse") },
			kind:   ErrUnknownPass,
		},
		{
			name: "unsupported",
			mutate: func(s *Scenario) {
				s.Circuit.Gates[3] = gate("rx", []int{0}, []int{}, "theta")
				s.Targets = []string{"qasm2"}
			},
			kind: ErrUnsupported,
		},
		{
			name: "stale stats",
			mutate: func(s *Scenario) {
				s.Circuit.GateCounts = map[string]int{"h": 2, "cx": 1, "rx": 1}
				s.Circuit.Depth = intPtr(3)
			},
			kind: ErrStaleStats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := concreteScenario()
			tt.mutate(s)
			s.Expect = ExpectClause{Error: &ErrorClause{Kind: tt.kind}}

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Equal(t, tt.kind, ErrorKind(result.Err))
		})
	}
}

func TestRun_WrongErrorKind(t *testing.T) {
	s := concreteScenario()
	s.Passes = []string{"fuse"}
	s.Expect = ExpectClause{Error: &ErrorClause{Kind: ErrUnknownGate}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "unknown_pass error")
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	s := concreteScenario()
	s.Expect = ExpectClause{Error: &ErrorClause{Kind: ErrMalformed}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "Actual: no error")
}

func TestRun_CatalogLoadFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(`gate: h: family: "rotation"`), 0644))

	s := concreteScenario()
	s.Catalog = path

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
}
