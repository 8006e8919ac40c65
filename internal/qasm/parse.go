package qasm

import (
	"errors"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/ir"
)

// Pre-compiled regexps for statement matching. Statements arrive trimmed
// and without their terminating semicolon.
var (
	headerRegex   = regexp.MustCompile(`^OPENQASM\s+(\d+)(?:\.(\d+))?$`)
	includeRegex  = regexp.MustCompile(`^include\s+"[^"]*"$`)
	qregRegex     = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	qubitRegex    = regexp.MustCompile(`^qubit\s*\[\s*(\d+)\s*\]\s+(\w+)$`)
	classicRegex  = regexp.MustCompile(`^(?:creg\s+\w+\s*\[\s*\d+\s*\]|bit(?:\s*\[\s*\d+\s*\])?\s+\w+)$`)
	inputRegex    = regexp.MustCompile(`^input\s+(?:float|angle)(?:\s*\[\s*\d+\s*\])?\s+(\w+)$`)
	modifierRegex = regexp.MustCompile(`^(ctrl|inv)\s*(?:\(\s*(\d+)\s*\))?\s*@\s*`)
	callRegex     = regexp.MustCompile(`^(\w+)\s*(?:\((.*)\)\s*|\s+)(\S.*)$`)
	operandRegex  = regexp.MustCompile(`^(\w+)\s*\[\s*(\d+)\s*\]$`)
	logRegex      = regexp.MustCompile(`\blog\s*\(`)
	keywordRegex  = regexp.MustCompile(`^(measure|reset|barrier|gate|opaque|if|def|for|while)\b`)
)

type parser struct {
	cat       *catalog.Catalog
	version   int
	reverse   map[catalog.Spelling]string
	reg       string
	numQubits int
	inputs    map[string]bool
	gates     []ir.Gate
	lines     []int // source line of each gate
	comments  []string
}

// Option configures Parse.
type Option func(*parser)

// WithCatalog resolves gate names against cat instead of the built-in
// catalog. The returned circuit is bound to cat.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(p *parser) {
		p.cat = cat
	}
}

// Parse reads an OpenQASM 2.0 or 3.0 program into a circuit. Every failure
// is a *ParseError; IR and catalog errors are wrapped, so IsUnknownGate and
// IsMalformed still see them.
func Parse(src string, opts ...Option) (*ir.Circuit, error) {
	p := &parser{inputs: map[string]bool{}}
	for _, opt := range opts {
		opt(p)
	}
	if p.cat == nil {
		p.cat = catalog.Default()
	}

	for i, raw := range strings.Split(src, "\n") {
		if err := p.line(i+1, raw); err != nil {
			return nil, err
		}
	}
	return p.finish()
}

func (p *parser) line(n int, raw string) error {
	code, comment, hasComment := strings.Cut(raw, "//")
	code = strings.TrimSpace(code)
	if code == "" {
		if hasComment && p.version != 0 && p.reg == "" {
			p.comments = append(p.comments, strings.TrimPrefix(strings.TrimRight(comment, " \t\r"), " "))
		}
		return nil
	}

	stmts := strings.Split(code, ";")
	if last := strings.TrimSpace(stmts[len(stmts)-1]); last != "" {
		return parseErrorf(n, "missing ';' after %q", last)
	}
	for _, s := range stmts[:len(stmts)-1] {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if err := p.statement(n, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) statement(n int, s string) error {
	if p.version == 0 {
		m := headerRegex.FindStringSubmatch(s)
		if m == nil {
			return parseErrorf(n, "missing OPENQASM header")
		}
		switch m[1] {
		case "2":
			p.version = 2
			p.reverse = reverseSpellings(p.cat, catalog.TargetQASM2)
		case "3":
			p.version = 3
			p.reverse = reverseSpellings(p.cat, catalog.TargetQASM3)
		default:
			return parseErrorf(n, "unsupported OpenQASM version %s", m[1])
		}
		return nil
	}

	switch {
	case headerRegex.MatchString(s):
		return parseErrorf(n, "duplicate OPENQASM header")
	case includeRegex.MatchString(s), classicRegex.MatchString(s):
		return nil
	}
	if m := qregRegex.FindStringSubmatch(s); m != nil {
		return p.declare(n, m[1], m[2])
	}
	if m := qubitRegex.FindStringSubmatch(s); m != nil {
		if p.version < 3 {
			return parseErrorf(n, "qubit declarations require OpenQASM 3")
		}
		return p.declare(n, m[2], m[1])
	}
	if m := inputRegex.FindStringSubmatch(s); m != nil {
		if p.version < 3 {
			return parseErrorf(n, "input declarations require OpenQASM 3")
		}
		p.inputs[m[1]] = true
		return nil
	}
	if m := keywordRegex.FindStringSubmatch(s); m != nil {
		return parseErrorf(n, "unsupported statement %q", m[1])
	}
	return p.gate(n, s)
}

func (p *parser) declare(n int, name, size string) error {
	if p.reg != "" {
		return parseErrorf(n, "only one quantum register is supported")
	}
	numQubits, err := strconv.Atoi(size)
	if err != nil || numQubits < 1 {
		return parseErrorf(n, "register %s must have a positive size", name)
	}
	p.reg, p.numQubits = name, numQubits
	return nil
}

func (p *parser) gate(n int, s string) error {
	if p.reg == "" {
		return parseErrorf(n, "gate before qubit register declaration")
	}

	rest := s
	extra, adjoint := 0, false
	for {
		m := modifierRegex.FindStringSubmatch(rest)
		if m == nil {
			break
		}
		if p.version < 3 {
			return parseErrorf(n, "%s modifier requires OpenQASM 3", m[1])
		}
		switch m[1] {
		case "ctrl":
			k := 1
			if m[2] != "" {
				k, _ = strconv.Atoi(m[2])
			}
			if k < 1 {
				return parseErrorf(n, "ctrl modifier needs at least one control")
			}
			extra += k
		case "inv":
			if adjoint {
				return parseErrorf(n, "repeated inv modifier")
			}
			adjoint = true
		}
		rest = rest[len(m[0]):]
	}

	m := callRegex.FindStringSubmatch(rest)
	if m == nil {
		return parseErrorf(n, "cannot parse statement %q", s)
	}
	d, err := p.resolve(n, m[1], adjoint)
	if err != nil {
		return err
	}
	params, err := p.params(n, m[2])
	if err != nil {
		return err
	}
	qubits, err := p.operands(n, m[3])
	if err != nil {
		return err
	}

	want := extra + d.Controls + d.Targets
	if len(qubits) != want {
		return parseErrorf(n, "%s expects %d qubit operand(s), got %d", m[1], want, len(qubits))
	}
	controls := slices.Concat(qubits[extra:extra+d.Controls], qubits[:extra])
	p.gates = append(p.gates, ir.NewGate(d.Name, qubits[extra+d.Controls:], controls, params...))
	p.lines = append(p.lines, n)
	return nil
}

// resolve maps a spelled gate back to its catalog entry. Canonical names
// and aliases are accepted too.
func (p *parser) resolve(n int, name string, adjoint bool) (catalog.Descriptor, error) {
	if canonical, ok := p.reverse[catalog.Spelling{Name: name, Adjoint: adjoint}]; ok {
		return p.cat.Lookup(canonical)
	}
	if adjoint {
		return catalog.Descriptor{}, parseErrorf(n, "inv @ %s has no catalog equivalent", name)
	}
	d, err := p.cat.Lookup(name)
	if err != nil {
		ug := catalog.UnknownGateAt(name, len(p.gates))
		return catalog.Descriptor{}, &ParseError{Line: n, Message: ug.Error(), Err: ug}
	}
	return d, nil
}

func (p *parser) params(n int, text string) ([]ir.Parameter, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var out []ir.Parameter
	for i, arg := range splitArgs(text) {
		arg = strings.TrimSpace(arg)
		if p.version >= 3 {
			arg = logRegex.ReplaceAllString(arg, "ln(")
		}
		if arg == "" {
			return nil, parseErrorf(n, "parameter %d is empty", i)
		}
		param, err := ir.ParseParameter(arg)
		if err != nil {
			return nil, &ParseError{Line: n, Message: err.Error(), Err: err}
		}
		if sym, ok := param.(ir.Symbolic); ok {
			for _, name := range sym.FreeSymbols() {
				switch {
				case p.version < 3:
					return nil, parseErrorf(n, "free parameter %q is not allowed in OpenQASM 2", name)
				case !p.inputs[name]:
					return nil, parseErrorf(n, "undeclared parameter %q", name)
				}
			}
		}
		out = append(out, param)
	}
	return out, nil
}

func (p *parser) operands(n int, text string) ([]int, error) {
	var out []int
	for _, arg := range strings.Split(text, ",") {
		m := operandRegex.FindStringSubmatch(strings.TrimSpace(arg))
		if m == nil {
			return nil, parseErrorf(n, "bad qubit operand %q", strings.TrimSpace(arg))
		}
		if m[1] != p.reg {
			return nil, parseErrorf(n, "unknown register %q", m[1])
		}
		q, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, parseErrorf(n, "bad qubit index %q", m[2])
		}
		out = append(out, q)
	}
	return out, nil
}

func (p *parser) finish() (*ir.Circuit, error) {
	if p.version == 0 {
		return nil, parseErrorf(0, "missing OPENQASM header")
	}
	if p.reg == "" {
		return nil, parseErrorf(0, "no qubit register declared")
	}

	opts := []ir.CircuitOption{ir.WithCatalog(p.cat)}
	if meta, ok := p.metadata(); ok {
		opts = append(opts, ir.WithMetadata(meta))
	}
	c, err := ir.New(p.numQubits, p.gates, opts...)
	if err != nil {
		line := 0
		var me *ir.MalformedCircuitError
		if errors.As(err, &me) && me.Index >= 0 {
			line = p.lines[me.Index]
		}
		var ug *catalog.UnknownGateError
		if errors.As(err, &ug) && ug.Index >= 0 {
			line = p.lines[ug.Index]
		}
		return nil, &ParseError{Line: line, Message: err.Error(), Err: err}
	}
	return c, nil
}

func (p *parser) metadata() (ir.Metadata, bool) {
	lines := p.comments
	if len(lines) == 0 {
		return ir.Metadata{}, false
	}
	var m ir.Metadata
	if name, ok := strings.CutPrefix(lines[0], "name: "); ok {
		m.Name = name
		lines = lines[1:]
	}
	m.Description = strings.Join(lines, "\n")
	return m, true
}

// reverseSpellings indexes catalog entries by their spelling for t. When
// two entries share a spelling the first name in sorted order wins.
func reverseSpellings(cat *catalog.Catalog, t catalog.Target) map[catalog.Spelling]string {
	out := make(map[catalog.Spelling]string, cat.Len())
	for _, name := range cat.Names() {
		d, err := cat.Lookup(name)
		if err != nil {
			continue
		}
		sp, ok := d.Spelling(t)
		if !ok {
			continue
		}
		if _, taken := out[sp]; !taken {
			out[sp] = name
		}
	}
	return out
}

// splitArgs splits on commas outside parentheses.
func splitArgs(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}
