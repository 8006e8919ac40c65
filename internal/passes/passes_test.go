package passes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qcanvas/internal/ir"
	tu "github.com/roach88/qcanvas/internal/testutil"
)

func TestRemoveSelfInversePairsRuns(t *testing.T) {
	for _, name := range []string{"h", "x", "y", "z"} {
		for k := 0; k <= 5; k++ {
			gates := make([]ir.Gate, k)
			for i := range gates {
				gates[i] = ir.NewGate(name, []int{0}, nil)
			}
			c := tu.Circuit(t, 1, gates...)

			out, err := Apply(DefaultRegistry(), c, []string{RemoveSelfInversePairs})
			require.NoError(t, err)
			assert.Equal(t, k%2, out.Len(), "%d x %s", k, name)
		}
	}
}

func TestRemoveSelfInversePairs(t *testing.T) {
	tests := []struct {
		name      string
		numQubits int
		gates     []ir.Gate
		want      []string
	}{
		{"gate on other qubit does not block", 2, []ir.Gate{tu.H(0), tu.X(1), tu.H(0)}, []string{"x"}},
		{"intervening control blocks", 2, []ir.Gate{tu.H(0), tu.CX(0, 1), tu.H(0)}, []string{"h", "cx", "h"}},
		{"intervening target blocks", 2, []ir.Gate{tu.H(1), tu.CX(0, 1), tu.H(1)}, []string{"h", "cx", "h"}},
		{"different names do not cancel", 1, []ir.Gate{tu.H(0), tu.X(0)}, []string{"h", "x"}},
		{"non self-inverse gates stay", 1, []ir.Gate{tu.S(0), tu.S(0), tu.T(0), tu.T(0)}, []string{"s", "s", "t", "t"}},
		{"inner pair cancels first", 1, []ir.Gate{tu.H(0), tu.X(0), tu.X(0), tu.H(0)}, []string{"h", "h"}},
		{"controlled gates never cancel", 2, []ir.Gate{tu.CX(0, 1), tu.CX(0, 1)}, []string{"cx", "cx"}},
		{"controlled base gate never cancels", 3, []ir.Gate{tu.Controlled(tu.H(2), 0), tu.Controlled(tu.H(2), 0)}, []string{"h", "h"}},
		{"parameterized gates are not self-inverse", 1, []ir.Gate{tu.RX(0, "pi"), tu.RX(0, "pi")}, []string{"rx", "rx"}},
		{"independent qubits", 2, []ir.Gate{tu.H(0), tu.Z(1), tu.H(0), tu.Z(1)}, nil},
		{"interleaved names on one qubit", 1, []ir.Gate{tu.H(0), tu.Z(0), tu.H(0), tu.Z(0)}, []string{"h", "z", "h", "z"}},
		{"two-target gate blocks both qubits", 2, []ir.Gate{tu.H(0), tu.X(1), ir.NewGate("swap", []int{0, 1}, nil), tu.H(0), tu.X(1)}, []string{"h", "x", "swap", "h", "x"}},
		{"gate elsewhere keeps candidates", 4, []ir.Gate{tu.H(0), tu.X(1), tu.CX(2, 3), tu.H(0), tu.X(1)}, []string{"cx"}},
		{"alias resolves before matching", 1, []ir.Gate{ir.NewGate("X", []int{0}, nil), tu.X(0)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tu.Circuit(t, tt.numQubits, tt.gates...)
			out, err := Apply(DefaultRegistry(), c, []string{RemoveSelfInversePairs})
			require.NoError(t, err)

			want := tt.want
			if want == nil {
				want = []string{}
			}
			assert.Equal(t, want, tu.Names(out))
		})
	}
}

func TestConcreteScenario(t *testing.T) {
	c := tu.Circuit(t, 2, tu.H(0), tu.H(0), tu.CX(0, 1), tu.RX(0, "pi/2"))

	out, err := Apply(DefaultRegistry(), c, []string{RemoveSelfInversePairs})
	require.NoError(t, err)

	assert.Equal(t, 2, out.NumQubits())
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "cx", out.Gate(0).Name())
	assert.Equal(t, []int{0}, out.Gate(0).Controls())
	assert.Equal(t, []int{1}, out.Gate(0).Targets())
	assert.Equal(t, "rx", out.Gate(1).Name())
	assert.Equal(t, "pi/2", out.Gate(1).Params()[0].String())

	s, ok := out.Stats()
	require.True(t, ok, "stats-invalidating pass recomputes stats")
	assert.Equal(t, 2, s.Depth)
	assert.Equal(t, map[string]int{"cx": 1, "rx": 1}, s.GateCounts)

	// The input is untouched.
	assert.Equal(t, 4, c.Len())
	_, ok = c.Stats()
	assert.False(t, ok)
}

func TestRemoveIdentityGates(t *testing.T) {
	c := tu.Circuit(t, 2, tu.I(0), tu.H(0), tu.Controlled(tu.I(1), 0), ir.NewGate("i", []int{1}, nil), tu.X(1))

	out, err := Apply(DefaultRegistry(), c, []string{RemoveIdentityGates})
	require.NoError(t, err)
	assert.Equal(t, []string{"h", "x"}, tu.Names(out))
}

func TestPipelineOrder(t *testing.T) {
	// Removing the identity first makes the H pair adjacent.
	c := tu.Circuit(t, 1, tu.H(0), tu.I(0), tu.H(0))

	out, err := Apply(DefaultRegistry(), c, []string{RemoveSelfInversePairs, RemoveIdentityGates})
	require.NoError(t, err)
	assert.Equal(t, []string{"h", "h"}, tu.Names(out))

	out, err = Apply(DefaultRegistry(), c, []string{RemoveIdentityGates, RemoveSelfInversePairs})
	require.NoError(t, err)
	assert.Empty(t, tu.Names(out))
}

func TestUnknownPassFailsFast(t *testing.T) {
	calls := 0
	reg, err := NewRegistry(Pass{
		Name: "count",
		Transform: func(c *ir.Circuit) (*ir.Circuit, error) {
			calls++
			return c, nil
		},
	})
	require.NoError(t, err)

	c := tu.Circuit(t, 1, tu.H(0))
	out, err := Apply(reg, c, []string{"count", "nope", "count"})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 0, calls, "no pass runs when any name is unknown")

	var up *UnknownPassError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, "nope", up.Name)
	assert.True(t, IsUnknownPass(err))
}

func TestPassNamesAreCaseSensitive(t *testing.T) {
	_, err := NewPipeline(DefaultRegistry(), []string{"Remove_Self_Inverse_Pairs"})
	assert.True(t, IsUnknownPass(err))
}

func TestStatsCarriedForwardWhenNotInvalidated(t *testing.T) {
	reg, err := NewRegistry(Pass{
		Name:      "noop",
		Transform: func(c *ir.Circuit) (*ir.Circuit, error) { return c.WithoutStats(), nil },
	})
	require.NoError(t, err)

	cached := ir.Stats{GateCounts: map[string]int{"h": 1}, Depth: 1}
	c := tu.Circuit(t, 1, tu.H(0)).WithStats(cached)

	out, err := Apply(reg, c, []string{"noop"})
	require.NoError(t, err)
	s, ok := out.Stats()
	require.True(t, ok)
	assert.True(t, cached.Equal(s))

	bare := tu.Circuit(t, 1, tu.H(0))
	out, err = Apply(reg, bare, []string{"noop"})
	require.NoError(t, err)
	_, ok = out.Stats()
	assert.False(t, ok, "no stats appear out of nowhere")
}

func TestEmptyPipeline(t *testing.T) {
	c := tu.Circuit(t, 1, tu.H(0), tu.H(0))
	p, err := NewPipeline(DefaultRegistry(), nil)
	require.NoError(t, err)
	assert.False(t, p.InvalidatesStats())

	out, err := p.Apply(c)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestTransformErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	reg, err := NewRegistry(Pass{
		Name:      "fail",
		Transform: func(*ir.Circuit) (*ir.Circuit, error) { return nil, boom },
	})
	require.NoError(t, err)

	out, err := Apply(reg, tu.Circuit(t, 1), []string{"fail"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "pass fail")
}

func TestNewRegistryValidation(t *testing.T) {
	noop := func(c *ir.Circuit) (*ir.Circuit, error) { return c, nil }

	_, err := NewRegistry(Pass{Transform: noop})
	assert.ErrorContains(t, err, "name is required")

	_, err = NewRegistry(Pass{Name: "a"})
	assert.ErrorContains(t, err, "no transform")

	_, err = NewRegistry(Pass{Name: "a", Transform: noop}, Pass{Name: "a", Transform: noop})
	assert.ErrorContains(t, err, "registered twice")
}

func TestDefaultRegistryPasses(t *testing.T) {
	passes := DefaultRegistry().Passes()
	require.Len(t, passes, 2)
	assert.Equal(t, RemoveSelfInversePairs, passes[0].Name)
	assert.True(t, passes[0].InvalidatesStats)
	assert.Equal(t, RemoveIdentityGates, passes[1].Name)
}

func TestPipelineNames(t *testing.T) {
	p, err := NewPipeline(DefaultRegistry(), []string{RemoveIdentityGates, RemoveSelfInversePairs})
	require.NoError(t, err)
	assert.Equal(t, []string{RemoveIdentityGates, RemoveSelfInversePairs}, p.Names())
	assert.True(t, p.InvalidatesStats())
}
