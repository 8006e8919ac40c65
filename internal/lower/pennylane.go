package lower

import (
	"fmt"
	"strings"

	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/ir"
)

var pennylaneExpr = ir.ExprSpelling{
	Pi: "np.pi",
	Func: func(name string) string {
		if name == "ln" {
			return "np.log"
		}
		return "np." + name
	},
}

const pennylaneIndent = "    "

type pennylaneEmitter struct{}

func (pennylaneEmitter) target() catalog.Target { return catalog.TargetPennyLane }

// Extra controls always go through qml.ctrl, even where a native
// controlled operation exists.
func (pennylaneEmitter) remapControls() bool { return false }

// Operations are reached through the qml module.
func (pennylaneEmitter) bareGateNames() bool { return false }

func (pennylaneEmitter) header(b *strings.Builder, c *ir.Circuit, symbols []string) error {
	writeComments(b, "# ", c)
	b.WriteString("import pennylane as qml\n")
	b.WriteString("from pennylane import numpy as np\n")
	b.WriteString("\n")
	fmt.Fprintf(b, "dev = qml.device('default.qubit', wires=%d)\n", c.NumQubits())
	b.WriteString("\n")
	b.WriteString("@qml.qnode(dev)\n")
	fmt.Fprintf(b, "def circuit(%s):\n", strings.Join(symbols, ", "))
	return nil
}

func (pennylaneEmitter) gate(b *strings.Builder, o op) error {
	var args []string
	for _, p := range o.params {
		args = append(args, renderParam(p, pennylaneExpr))
	}
	args = append(args, "wires="+wireList(o.operands))
	call := fmt.Sprintf("qml.%s(%s)", o.spelling.Name, strings.Join(args, ", "))

	if o.spelling.Adjoint {
		call = fmt.Sprintf("qml.adjoint(%s)", call)
	}
	if len(o.extra) > 0 {
		call = fmt.Sprintf("qml.ctrl(%s, control=%s)", call, wireList(o.extra))
	}
	b.WriteString(pennylaneIndent)
	b.WriteString(call)
	b.WriteByte('\n')
	return nil
}

func (pennylaneEmitter) footer(b *strings.Builder, _ *ir.Circuit) {
	b.WriteString(pennylaneIndent)
	b.WriteString("return qml.expval(qml.PauliZ(0))\n")
}

// wireList renders one wire bare and several as a list.
func wireList(qubits []int) string {
	if len(qubits) == 1 {
		return fmt.Sprint(qubits[0])
	}
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = fmt.Sprint(q)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
