package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Gate is one gate instance. Its slices are owned by the Gate and never
// exposed; accessors return copies.
type Gate struct {
	name     string
	targets  []int
	controls []int
	params   []Parameter
}

// NewGate builds a gate instance. The name is trimmed and lowercased; arity
// and qubit ranges are checked when the gate is placed in a Circuit.
func NewGate(name string, targets, controls []int, params ...Parameter) Gate {
	return Gate{
		name:     strings.ToLower(strings.TrimSpace(name)),
		targets:  slices.Clone(targets),
		controls: slices.Clone(controls),
		params:   slices.Clone(params),
	}
}

// Name returns the gate's canonical name.
func (g Gate) Name() string { return g.name }

// Targets returns the target qubits in order.
func (g Gate) Targets() []int { return slices.Clone(g.targets) }

// Controls returns the control qubits in order.
func (g Gate) Controls() []int { return slices.Clone(g.controls) }

// Params returns the gate parameters in order.
func (g Gate) Params() []Parameter { return slices.Clone(g.params) }

// NumTargets, NumControls and NumParams avoid copying for arity checks.
func (g Gate) NumTargets() int  { return len(g.targets) }
func (g Gate) NumControls() int { return len(g.controls) }
func (g Gate) NumParams() int   { return len(g.params) }

// Qubits returns every qubit the gate touches: controls first, then targets.
func (g Gate) Qubits() []int {
	out := make([]int, 0, len(g.controls)+len(g.targets))
	out = append(out, g.controls...)
	return append(out, g.targets...)
}

// Touches reports whether the gate acts on qubit q as target or control.
func (g Gate) Touches(q int) bool {
	return slices.Contains(g.targets, q) || slices.Contains(g.controls, q)
}

// Equal reports structural equality.
func (g Gate) Equal(o Gate) bool {
	if g.name != o.name || !slices.Equal(g.targets, o.targets) || !slices.Equal(g.controls, o.controls) {
		return false
	}
	return slices.EqualFunc(g.params, o.params, ParamEqual)
}

func (g Gate) String() string {
	var b strings.Builder
	b.WriteString(g.name)
	if len(g.params) > 0 {
		b.WriteByte('(')
		for i, p := range g.params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteByte(')')
	}
	if len(g.controls) > 0 {
		fmt.Fprintf(&b, " c=%v", g.controls)
	}
	fmt.Fprintf(&b, " t=%v", g.targets)
	return b.String()
}

// withName returns a copy of g renamed to a canonical catalog name.
func (g Gate) withName(name string) Gate {
	g.name = name
	return g
}
