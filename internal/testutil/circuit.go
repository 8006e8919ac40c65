package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/qcanvas/internal/ir"
)

// Gate shorthands for building test circuits.

func H(q int) ir.Gate { return ir.NewGate("h", []int{q}, nil) }
func X(q int) ir.Gate { return ir.NewGate("x", []int{q}, nil) }
func Y(q int) ir.Gate { return ir.NewGate("y", []int{q}, nil) }
func Z(q int) ir.Gate { return ir.NewGate("z", []int{q}, nil) }
func S(q int) ir.Gate { return ir.NewGate("s", []int{q}, nil) }
func T(q int) ir.Gate { return ir.NewGate("t", []int{q}, nil) }
func I(q int) ir.Gate { return ir.NewGate("id", []int{q}, nil) }

func CX(control, target int) ir.Gate {
	return ir.NewGate("cx", []int{target}, []int{control})
}

func CCX(c0, c1, target int) ir.Gate {
	return ir.NewGate("ccx", []int{target}, []int{c0, c1})
}

// RX takes a parameter record text: a decimal becomes Numeric, anything
// else Symbolic.
func RX(q int, param string) ir.Gate {
	return ir.NewGate("rx", []int{q}, nil, mustParam(param))
}

func RZ(q int, param string) ir.Gate {
	return ir.NewGate("rz", []int{q}, nil, mustParam(param))
}

// Controlled attaches extra controls to a controllable base gate.
func Controlled(g ir.Gate, controls ...int) ir.Gate {
	return ir.NewGate(g.Name(), g.Targets(), append(g.Controls(), controls...), g.Params()...)
}

func mustParam(s string) ir.Parameter {
	p, err := ir.ParseParameter(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Circuit builds a circuit or fails the test.
func Circuit(t testing.TB, numQubits int, gates ...ir.Gate) *ir.Circuit {
	t.Helper()
	c, err := ir.New(numQubits, gates)
	require.NoError(t, err)
	return c
}

// Names returns the gate names of c in order.
func Names(c *ir.Circuit) []string {
	names := make([]string, c.Len())
	for i := range c.Len() {
		names[i] = c.Gate(i).Name()
	}
	return names
}
