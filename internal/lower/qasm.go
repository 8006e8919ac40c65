package lower

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/ir"
)

var qasm3Expr = ir.ExprSpelling{
	Pi: "pi",
	Func: func(name string) string {
		if name == "ln" {
			return "log"
		}
		return name
	},
}

// qasm2 keeps the qelib1 function names as written.
var qasm2Expr = ir.ExprSpelling{Pi: "pi", Number: qasm2Real}

// qasm2Real gives an exponent literal the fractional mantissa OpenQASM 2
// requires: "1e+21" becomes "1.0e+21".
func qasm2Real(text string) string {
	i := strings.IndexAny(text, "eE")
	if i < 0 || strings.Contains(text[:i], ".") {
		return text
	}
	return text[:i] + ".0" + text[i:]
}

type qasm3Emitter struct{}

func (qasm3Emitter) target() catalog.Target { return catalog.TargetQASM3 }
func (qasm3Emitter) remapControls() bool    { return true }
func (qasm3Emitter) bareGateNames() bool    { return true }

func (qasm3Emitter) header(b *strings.Builder, c *ir.Circuit, symbols []string) error {
	b.WriteString("OPENQASM 3.0;\n")
	b.WriteString("include \"stdgates.inc\";\n")
	writeComments(b, "// ", c)
	for _, s := range symbols {
		fmt.Fprintf(b, "input float[64] %s;\n", s)
	}
	fmt.Fprintf(b, "qubit[%d] q;\n", c.NumQubits())
	return nil
}

func (qasm3Emitter) gate(b *strings.Builder, o op) error {
	switch n := len(o.extra); {
	case n == 1:
		b.WriteString("ctrl @ ")
	case n > 1:
		fmt.Fprintf(b, "ctrl(%d) @ ", n)
	}
	if o.spelling.Adjoint {
		b.WriteString("inv @ ")
	}
	b.WriteString(o.spelling.Name)
	if len(o.params) > 0 {
		fmt.Fprintf(b, "(%s)", renderParams(o.params, qasm3Expr))
	}
	b.WriteByte(' ')
	writeOperands(b, slices.Concat(o.extra, o.operands))
	b.WriteString(";\n")
	return nil
}

func (qasm3Emitter) footer(*strings.Builder, *ir.Circuit) {}

type qasm2Emitter struct{}

func (qasm2Emitter) target() catalog.Target { return catalog.TargetQASM2 }
func (qasm2Emitter) remapControls() bool    { return true }
func (qasm2Emitter) bareGateNames() bool    { return true }

func (qasm2Emitter) header(b *strings.Builder, c *ir.Circuit, symbols []string) error {
	if len(symbols) > 0 {
		i, g := firstSymbolUse(c, symbols[0])
		return &UnsupportedError{Index: i, Gate: g.Name(), Target: catalog.TargetQASM2,
			Reason: fmt.Sprintf("free parameter %q has no OpenQASM 2 declaration", symbols[0])}
	}
	b.WriteString("OPENQASM 2.0;\n")
	b.WriteString("include \"qelib1.inc\";\n")
	writeComments(b, "// ", c)
	fmt.Fprintf(b, "qreg q[%d];\n", c.NumQubits())
	return nil
}

func (qasm2Emitter) gate(b *strings.Builder, o op) error {
	if len(o.extra) > 0 {
		return &UnsupportedError{Index: o.index, Gate: o.name, Target: catalog.TargetQASM2,
			Reason: fmt.Sprintf("no native form with %d extra control(s)", len(o.extra))}
	}
	if o.spelling.Adjoint {
		return &UnsupportedError{Index: o.index, Gate: o.name, Target: catalog.TargetQASM2,
			Reason: "adjoint modifier is not available"}
	}
	b.WriteString(o.spelling.Name)
	if len(o.params) > 0 {
		fmt.Fprintf(b, "(%s)", renderParams(o.params, qasm2Expr))
	}
	b.WriteByte(' ')
	writeOperands(b, o.operands)
	b.WriteString(";\n")
	return nil
}

func (qasm2Emitter) footer(*strings.Builder, *ir.Circuit) {}

func writeOperands(b *strings.Builder, qubits []int) {
	for i, q := range qubits {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "q[%d]", q)
	}
}

func writeComments(b *strings.Builder, prefix string, c *ir.Circuit) {
	for _, line := range commentLines(c) {
		b.WriteString(strings.TrimRight(prefix+line, " "))
		b.WriteByte('\n')
	}
}
