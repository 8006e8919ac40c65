package lower

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/ir"
)

// op is one gate resolved for a target.
type op struct {
	index    int
	name     string // canonical name of the spelled catalog entry
	spelling catalog.Spelling
	params   []ir.Parameter
	// extra controls are applied with the target's generic control
	// construct; operands are the spelled gate's own controls then targets.
	extra    []int
	operands []int
	// controls counts the leading operands that are native controls.
	controls int
}

// emitter writes one target language.
type emitter interface {
	target() catalog.Target
	// remapControls reports whether extra controls should first be folded
	// into a native controlled catalog entry.
	remapControls() bool
	// bareGateNames reports whether gate names share one namespace with
	// declared parameters.
	bareGateNames() bool
	header(b *strings.Builder, c *ir.Circuit, symbols []string) error
	gate(b *strings.Builder, o op) error
	footer(b *strings.Builder, c *ir.Circuit)
}

func emitterFor(t catalog.Target) emitter {
	switch t {
	case catalog.TargetQASM3:
		return qasm3Emitter{}
	case catalog.TargetQASM2:
		return qasm2Emitter{}
	case catalog.TargetPennyLane:
		return pennylaneEmitter{}
	}
	return nil
}

type options struct {
	catalog *catalog.Catalog
}

// Option configures Lower.
type Option func(*options)

// WithCatalog resolves gate spellings with cat instead of the catalog the
// circuit was built with.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(o *options) {
		o.catalog = cat
	}
}

// Lower renders c as a complete program for target.
//
// Gate names missing from the catalog fail with *catalog.UnknownGateError
// carrying the gate index; constructs the target cannot express fail with
// *UnsupportedError. On error the returned string is empty.
func Lower(c *ir.Circuit, target catalog.Target, opts ...Option) (string, error) {
	o := options{catalog: c.Catalog()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.catalog == nil {
		o.catalog = catalog.Default()
	}

	em := emitterFor(target)
	if em == nil {
		return "", &UnsupportedError{Index: -1, Target: target, Reason: "unknown target"}
	}

	ops := make([]op, c.Len())
	for i := range c.Len() {
		resolved, err := resolve(o.catalog, em, i, c.Gate(i))
		if err != nil {
			return "", err
		}
		ops[i] = resolved
	}

	symbols := freeSymbols(c)
	if em.bareGateNames() {
		if err := checkSymbolNames(o.catalog, em.target(), c, symbols); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	if err := em.header(&b, c, symbols); err != nil {
		return "", err
	}
	for _, o := range ops {
		if err := em.gate(&b, o); err != nil {
			return "", err
		}
	}
	em.footer(&b, c)
	return b.String(), nil
}

func resolve(cat *catalog.Catalog, em emitter, i int, g ir.Gate) (op, error) {
	d, err := cat.Lookup(g.Name())
	if err != nil {
		return op{}, catalog.UnknownGateAt(g.Name(), i)
	}

	controls := g.Controls()
	if len(controls) < d.Controls {
		return op{}, &UnsupportedError{Index: i, Gate: d.Name, Target: em.target(),
			Reason: "fewer controls than the catalog entry declares"}
	}
	native, extra := controls[:d.Controls], controls[d.Controls:]

	if len(extra) > 0 && em.remapControls() {
		if name, ok := d.NativeControlled(len(extra)); ok {
			nd, err := cat.Lookup(name)
			if err != nil {
				return op{}, catalog.UnknownGateAt(name, i)
			}
			d, native, extra = nd, controls, nil
		}
	}

	sp, ok := d.Spelling(em.target())
	if !ok {
		return op{}, &UnsupportedError{Index: i, Gate: d.Name, Target: em.target(), Reason: "no spelling for target"}
	}

	return op{
		index:    i,
		name:     d.Name,
		spelling: sp,
		params:   g.Params(),
		extra:    extra,
		operands: append(slices.Clone(native), g.Targets()...),
		controls: len(native),
	}, nil
}

// freeSymbols collects the identifiers used by symbolic parameters, sorted.
func freeSymbols(c *ir.Circuit) []string {
	var out []string
	for i := range c.Len() {
		for _, p := range c.Gate(i).Params() {
			if s, ok := p.(ir.Symbolic); ok {
				out = append(out, s.FreeSymbols()...)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// checkSymbolNames rejects a free symbol spelled like a catalog gate in t.
func checkSymbolNames(cat *catalog.Catalog, t catalog.Target, c *ir.Circuit, symbols []string) error {
	gates := make(map[string]bool)
	for _, name := range cat.Names() {
		d, err := cat.Lookup(name)
		if err != nil {
			continue
		}
		if sp, ok := d.Spelling(t); ok {
			gates[sp.Name] = true
		}
	}
	for _, s := range symbols {
		if gates[s] {
			i, g := firstSymbolUse(c, s)
			return &UnsupportedError{Index: i, Gate: g.Name(), Target: t,
				Reason: fmt.Sprintf("parameter %q is also a gate name", s)}
		}
	}
	return nil
}

// firstSymbolUse returns the index of the first gate that uses symbol.
func firstSymbolUse(c *ir.Circuit, symbol string) (int, ir.Gate) {
	for i := range c.Len() {
		g := c.Gate(i)
		for _, p := range g.Params() {
			if s, ok := p.(ir.Symbolic); ok && slices.Contains(s.FreeSymbols(), symbol) {
				return i, g
			}
		}
	}
	return -1, ir.Gate{}
}

// renderParam writes a parameter in target syntax. Numbers use the shortest
// round-trip decimal; symbolic expressions keep their structure.
func renderParam(p ir.Parameter, sp ir.ExprSpelling) string {
	switch v := p.(type) {
	case ir.Numeric:
		if sp.Number != nil {
			return sp.Number(v.String())
		}
		return v.String()
	case ir.Symbolic:
		return ir.FormatExpr(v.Tree(), sp)
	}
	return ""
}

func renderParams(ps []ir.Parameter, sp ir.ExprSpelling) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = renderParam(p, sp)
	}
	return strings.Join(parts, ", ")
}

// commentLines splits metadata text into lines for a comment block.
func commentLines(c *ir.Circuit) []string {
	m, ok := c.Metadata()
	if !ok {
		return nil
	}
	var lines []string
	if m.Name != "" {
		lines = append(lines, "name: "+m.Name)
	}
	if m.Description != "" {
		lines = append(lines, strings.Split(m.Description, "\n")...)
	}
	return lines
}
