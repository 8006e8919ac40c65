package qasm

import (
	"fmt"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/lower"
	tu "github.com/roach88/qcanvas/internal/testutil"
)

func TestParseQASM2(t *testing.T) {
	c, err := Parse(`OPENQASM 2.0;
include "qelib1.inc";
qreg q[3];
creg c[3];
h q[0];
cx q[0], q[1];
u1(pi/4) q[2];
ccx q[0],q[1],q[2];
rz(0.5) q[1]; // trailing comment
`)
	require.NoError(t, err)
	assert.Equal(t, 3, c.NumQubits())
	assert.Equal(t, []string{"h", "cx", "p", "ccx", "rz"}, tu.Names(c))

	assert.Equal(t, []int{0}, c.Gate(1).Controls())
	assert.Equal(t, []int{1}, c.Gate(1).Targets())
	assert.Equal(t, []int{0, 1}, c.Gate(3).Controls())
	assert.Equal(t, "pi/4", c.Gate(2).Params()[0].String())
	assert.Equal(t, ir.Numeric(0.5), c.Gate(4).Params()[0])

	_, ok := c.Metadata()
	assert.False(t, ok)
}

func TestParseQASM3Modifiers(t *testing.T) {
	c, err := Parse(`OPENQASM 3.0;
include "stdgates.inc";
input float[64] theta;
qubit[3] q;
ctrl @ s q[0], q[2];
ctrl(2) @ z q[0], q[1], q[2];
inv @ sx q[1];
ctrl @ inv @ sx q[0], q[1];
crx(theta/2) q[0], q[1];
rz(log(2)*pi) q[2];
U(pi, 0, pi) q[0];
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"s", "z", "sxdg", "sxdg", "crx", "rz", "u"}, tu.Names(c))

	assert.Equal(t, []int{0}, c.Gate(0).Controls())
	assert.Equal(t, []int{2}, c.Gate(0).Targets())
	assert.Equal(t, []int{0, 1}, c.Gate(1).Controls())
	assert.Equal(t, []int{0}, c.Gate(3).Controls())
	assert.Equal(t, "theta/2", c.Gate(4).Params()[0].String())
	assert.Equal(t, "ln(2)*pi", c.Gate(5).Params()[0].String())
	assert.Len(t, c.Gate(6).Params(), 3)
}

func TestParseMetadataComments(t *testing.T) {
	c, err := Parse(`OPENQASM 3.0;
include "stdgates.inc";
// name: plus
// prepares |+>
//
// for demos
qubit[1] q;
// not metadata
h q[0];
`)
	require.NoError(t, err)
	m, ok := c.Metadata()
	require.True(t, ok)
	assert.Equal(t, "plus", m.Name)
	assert.Equal(t, "prepares |+>\n\nfor demos", m.Description)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"empty", "", 0, "missing OPENQASM header"},
		{"no header", "qreg q[1];\n", 1, "missing OPENQASM header"},
		{"version", "OPENQASM 4.0;\n", 1, "unsupported OpenQASM version 4"},
		{"no register", "OPENQASM 2.0;\n", 0, "no qubit register declared"},
		{"two registers", "OPENQASM 2.0;\nqreg q[1];\nqreg r[1];\n", 3, "only one quantum register"},
		{"zero register", "OPENQASM 2.0;\nqreg q[0];\n", 2, "positive size"},
		{"gate before register", "OPENQASM 2.0;\nh q[0];\n", 2, "before qubit register"},
		{"missing semicolon", "OPENQASM 2.0;\nqreg q[1];\nh q[0]\n", 3, "missing ';'"},
		{"measure", "OPENQASM 2.0;\nqreg q[1];\nmeasure q[0] -> c[0];\n", 3, `unsupported statement "measure"`},
		{"barrier", "OPENQASM 2.0;\nqreg q[2];\nbarrier q;\n", 3, `unsupported statement "barrier"`},
		{"ctrl in qasm2", "OPENQASM 2.0;\nqreg q[2];\nctrl @ h q[0], q[1];\n", 3, "requires OpenQASM 3"},
		{"qubit in qasm2", "OPENQASM 2.0;\nqubit[2] q;\n", 2, "require OpenQASM 3"},
		{"wrong register", "OPENQASM 2.0;\nqreg q[2];\nh r[0];\n", 3, `unknown register "r"`},
		{"operand count", "OPENQASM 2.0;\nqreg q[2];\ncx q[0];\n", 3, "expects 2 qubit operand(s), got 1"},
		{"out of range", "OPENQASM 2.0;\nqreg q[2];\nh q[0];\nh q[5];\n", 4, "out of range"},
		{"undeclared symbol", "OPENQASM 3.0;\nqubit[1] q;\nrx(theta) q[0];\n", 3, `undeclared parameter "theta"`},
		{"symbol in qasm2", "OPENQASM 2.0;\nqreg q[1];\nrx(theta) q[0];\n", 3, "not allowed in OpenQASM 2"},
		{"bad expression", "OPENQASM 2.0;\nqreg q[1];\nrx(pi/) q[0];\n", 3, "unexpected end of expression"},
		{"inv without equivalent", "OPENQASM 3.0;\nqubit[1] q;\ninv @ h q[0];\n", 3, "no catalog equivalent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
			assert.Contains(t, err.Error(), tt.msg)
			assert.True(t, IsParseError(err))
		})
	}
}

func TestParseUnknownGate(t *testing.T) {
	_, err := Parse("OPENQASM 2.0;\nqreg q[2];\nh q[0];\nfoo q[1];\n")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.True(t, catalog.IsUnknownGate(err))

	var ug *catalog.UnknownGateError
	require.ErrorAs(t, err, &ug)
	assert.Equal(t, 1, ug.Index)
}

func TestParseMalformedIsWrapped(t *testing.T) {
	_, err := Parse("OPENQASM 2.0;\nqreg q[2];\ncx q[1], q[1];\n")
	require.Error(t, err)
	assert.True(t, ir.IsMalformed(err))
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseWithCatalog(t *testing.T) {
	ext, err := catalog.Extend([]byte(`
gate: iswap: {
	family:  "permutation"
	targets: 2
	spell: {
		qasm3: name:     "iswap"
		qasm2: name:     "iswap"
		pennylane: name: "ISWAP"
	}
}
`), "extra.cue")
	require.NoError(t, err)

	src := "OPENQASM 3.0;\nqubit[2] q;\niswap q[0], q[1];\n"
	_, err = Parse(src)
	assert.True(t, catalog.IsUnknownGate(err))

	c, err := Parse(src, WithCatalog(ext))
	require.NoError(t, err)
	assert.Same(t, ext, c.Catalog())
}

// gateKeys lists gates with native controls folded back onto the base name, so
// "ch" and "h" with one control compare equal.
func gateKeys(c *ir.Circuit) []string {
	cat := c.Catalog()
	keys := make([]string, c.Len())
	for i := range c.Len() {
		g := c.Gate(i)
		base, _ := cat.Decompose(g.Name())
		controls := g.Controls()
		slices.Sort(controls)
		keys[i] = fmt.Sprintf("%s t=%v c=%v", base, g.Targets(), controls)
	}
	sort.Strings(keys)
	return keys
}

func TestSemanticRoundTrip(t *testing.T) {
	circuits := map[string]*ir.Circuit{
		"bell": tu.Circuit(t, 2, tu.H(0), tu.CX(0, 1)),
		"controls": tu.Circuit(t, 3,
			tu.Controlled(tu.H(1), 0),
			tu.Controlled(tu.X(2), 0, 1),
			tu.Controlled(tu.S(2), 0),
			tu.Controlled(tu.RX(1, "0.785"), 0),
			tu.Controlled(tu.Z(2), 1, 0),
		),
		"parameters": tu.Circuit(t, 2,
			tu.RX(0, "pi/2"),
			tu.RZ(1, "-0.25"),
			ir.NewGate("u", []int{1}, nil, ir.MustSymbolic("pi"), ir.Numeric(0), ir.MustSymbolic("pi/2")),
			ir.NewGate("cp", []int{0}, []int{1}, ir.MustSymbolic("pi/8")),
		),
		"symbols":  tu.Circuit(t, 2, tu.RX(0, "theta"), tu.RZ(1, "phi + sqrt(theta)")),
		"adjoints": tu.Circuit(t, 2, ir.NewGate("sxdg", []int{0}, nil), ir.NewGate("tdg", []int{1}, nil), ir.NewGate("sdg", []int{0}, nil)),
		"swaps":    tu.Circuit(t, 3, ir.NewGate("swap", []int{0, 2}, nil), ir.NewGate("fredkin", []int{1, 2}, []int{0})),
		"empty":    tu.Circuit(t, 4),
	}

	for name, c := range circuits {
		for _, target := range []catalog.Target{catalog.TargetQASM3, catalog.TargetQASM2} {
			t.Run(name+"/"+target.String(), func(t *testing.T) {
				src, err := lower.Lower(c, target)
				if lower.IsUnsupported(err) {
					t.Skipf("not expressible: %v", err)
				}
				require.NoError(t, err)

				back, err := Parse(src)
				require.NoError(t, err, src)
				assert.Equal(t, c.NumQubits(), back.NumQubits())
				assert.Equal(t, gateKeys(c), gateKeys(back))
			})
		}
	}
}

func TestRoundTripKeepsMetadata(t *testing.T) {
	c, err := ir.New(1, []ir.Gate{tu.H(0)}, ir.WithMetadata(ir.Metadata{Name: "plus", Description: "line one\nline two"}))
	require.NoError(t, err)

	src, err := lower.Lower(c, catalog.TargetQASM3)
	require.NoError(t, err)
	back, err := Parse(src)
	require.NoError(t, err)

	m, ok := back.Metadata()
	require.True(t, ok)
	assert.Equal(t, ir.Metadata{Name: "plus", Description: "line one\nline two"}, m)
	assert.Equal(t, c.MustFingerprint(), back.MustFingerprint())
}
