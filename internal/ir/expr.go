package ir

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Expr is a node of a parsed symbolic parameter expression.
// Only the node types in this file implement it.
type Expr interface {
	expr()
}

// Number is a numeric literal, kept as written.
type Number struct {
	Text  string
	Value float64
}

// Pi is the constant pi, written "pi" or "\u03c0".
type Pi struct{}

// Ident is a free symbol such as theta.
type Ident struct {
	Name string
}

// Unary is a prefix sign.
type Unary struct {
	Op byte // '-' or '+'
	X  Expr
}

// Binary is an arithmetic operation.
type Binary struct {
	Op   byte // '+', '-', '*' or '/'
	L, R Expr
}

// Call applies one of the supported functions to a single argument.
type Call struct {
	Func string
	Arg  Expr
}

// Paren is an explicitly parenthesized sub-expression.
type Paren struct {
	X Expr
}

func (Number) expr() {}
func (Pi) expr()     {}
func (Ident) expr()  {}
func (Unary) expr()  {}
func (Binary) expr() {}
func (Call) expr()   {}
func (Paren) expr()  {}

// Functions lists the function names a symbolic expression may call.
var Functions = []string{"cos", "exp", "ln", "sin", "sqrt", "tan"}

// reservedIdents collide with names emitted by the lowering targets: the
// program scaffolding, Python keywords, and OpenQASM 3 keywords, types and
// built-ins.
var reservedIdents = map[string]bool{}

func init() {
	for _, names := range [][]string{
		// scaffolding
		{"q", "np", "qml", "dev", "circuit", "wires", "control"},
		// Python
		{"False", "None", "True", "and", "as", "assert", "async", "await",
			"break", "class", "continue", "def", "del", "elif", "else", "except",
			"finally", "for", "from", "global", "if", "import", "in", "is",
			"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
			"while", "with", "yield"},
		// OpenQASM 3 keywords and types
		{"OPENQASM", "include", "defcalgrammar", "def", "cal", "defcal", "gate",
			"extern", "box", "let", "break", "continue", "if", "else", "end",
			"return", "for", "while", "in", "switch", "case", "default",
			"input", "output", "const", "readonly", "mutable", "qreg", "qubit",
			"creg", "bool", "bit", "int", "uint", "float", "angle", "complex",
			"array", "void", "duration", "stretch", "gphase", "inv", "pow",
			"ctrl", "negctrl", "dim", "durationof", "delay", "reset", "measure",
			"barrier", "true", "false", "U", "CX", "opaque"},
		// OpenQASM 3 constants and built-in functions
		{"tau", "euler", "arccos", "arcsin", "arctan", "ceiling", "floor",
			"log", "mod", "popcount", "rotl", "rotr", "real", "imag", "sizeof"},
	} {
		for _, n := range names {
			reservedIdents[n] = true
		}
	}
}

var tokenRegex = regexp.MustCompile(`^\s*(?:((?:\d+\.?\d*|\.\d+)(?:[eE][+\-]?\d+)?)|(\x{03C0}|[A-Za-z_][A-Za-z0-9_]*)|([-+*/()]))`)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokName
	tokOp
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(s string) ([]token, error) {
	var toks []token
	pos := 0
	for {
		rest := s[pos:]
		if strings.TrimSpace(rest) == "" {
			break
		}
		m := tokenRegex.FindStringSubmatchIndex(rest)
		if m == nil {
			skip := len(rest) - len(strings.TrimLeftFunc(rest, unicode.IsSpace))
			return nil, fmt.Errorf("unexpected character %q at offset %d", []rune(rest[skip:])[0], pos+skip)
		}
		switch {
		case m[2] >= 0:
			toks = append(toks, token{kind: tokNumber, text: rest[m[2]:m[3]], pos: pos + m[2]})
		case m[4] >= 0:
			toks = append(toks, token{kind: tokName, text: rest[m[4]:m[5]], pos: pos + m[4]})
		default:
			toks = append(toks, token{kind: tokOp, text: rest[m[6]:m[7]], pos: pos + m[6]})
		}
		pos += m[1]
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

type exprParser struct {
	toks []token
	i    int
}

// ParseExpr parses a symbolic parameter expression: numbers, pi (or \u03c0),
// free identifiers, + - * /, parentheses and calls to Functions.
func ParseExpr(s string) (Expr, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return nil, fmt.Errorf("empty expression")
	}
	p := &exprParser{toks: toks}
	e, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d", t.text, t.pos)
	}
	return e, nil
}

func (p *exprParser) peek() token { return p.toks[p.i] }

func (p *exprParser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *exprParser) isOp(ops string) bool {
	t := p.peek()
	return t.kind == tokOp && strings.Contains(ops, t.text)
}

func (p *exprParser) sum() (Expr, error) {
	l, err := p.product()
	if err != nil {
		return nil, err
	}
	for p.isOp("+-") {
		op := p.next().text[0]
		r, err := p.product()
		if err != nil {
			return nil, err
		}
		l = Binary{Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *exprParser) product() (Expr, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*/") {
		op := p.next().text[0]
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = Binary{Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *exprParser) unary() (Expr, error) {
	if p.isOp("+-") {
		op := p.next().text[0]
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, X: x}, nil
	}
	return p.primary()
}

func (p *exprParser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid number %q at offset %d", t.text, t.pos)
		}
		return Number{Text: t.text, Value: v}, nil
	case tokName:
		if t.text == "pi" || t.text == "\u03c0" {
			return Pi{}, nil
		}
		if slices.Contains(Functions, t.text) {
			if !p.isOp("(") {
				return nil, fmt.Errorf("function %s at offset %d needs an argument", t.text, t.pos)
			}
			p.next()
			arg, err := p.sum()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return Call{Func: t.text, Arg: arg}, nil
		}
		if reservedIdents[t.text] {
			return nil, fmt.Errorf("%q is reserved and cannot be used as a symbol", t.text)
		}
		if p.isOp("(") {
			return nil, fmt.Errorf("unknown function %q at offset %d", t.text, t.pos)
		}
		return Ident{Name: t.text}, nil
	case tokOp:
		if t.text == "(" {
			x, err := p.sum()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return Paren{X: x}, nil
		}
		return nil, fmt.Errorf("unexpected %q at offset %d", t.text, t.pos)
	default:
		return nil, fmt.Errorf("unexpected end of expression")
	}
}

func (p *exprParser) expect(op string) error {
	t := p.next()
	if t.kind != tokOp || t.text != op {
		if t.kind == tokEOF {
			return fmt.Errorf("expected %q before end of expression", op)
		}
		return fmt.Errorf("expected %q at offset %d, got %q", op, t.pos, t.text)
	}
	return nil
}

// FreeSymbols returns the sorted, de-duplicated identifiers in e.
func FreeSymbols(e Expr) []string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case Ident:
			out = append(out, n.Name)
		case Unary:
			walk(n.X)
		case Binary:
			walk(n.L)
			walk(n.R)
		case Call:
			walk(n.Arg)
		case Paren:
			walk(n.X)
		}
	}
	walk(e)
	slices.Sort(out)
	return slices.Compact(out)
}

// Eval evaluates e with free symbols bound by env.
func Eval(e Expr, env map[string]float64) (float64, error) {
	switch n := e.(type) {
	case Number:
		return n.Value, nil
	case Pi:
		return math.Pi, nil
	case Ident:
		v, ok := env[n.Name]
		if !ok {
			return 0, fmt.Errorf("unbound symbol %q", n.Name)
		}
		return v, nil
	case Paren:
		return Eval(n.X, env)
	case Unary:
		x, err := Eval(n.X, env)
		if err != nil {
			return 0, err
		}
		if n.Op == '-' {
			return -x, nil
		}
		return x, nil
	case Binary:
		l, err := Eval(n.L, env)
		if err != nil {
			return 0, err
		}
		r, err := Eval(n.R, env)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case '+':
			return l + r, nil
		case '-':
			return l - r, nil
		case '*':
			return l * r, nil
		default:
			if r == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return l / r, nil
		}
	case Call:
		x, err := Eval(n.Arg, env)
		if err != nil {
			return 0, err
		}
		switch n.Func {
		case "sin":
			return math.Sin(x), nil
		case "cos":
			return math.Cos(x), nil
		case "tan":
			return math.Tan(x), nil
		case "exp":
			return math.Exp(x), nil
		case "ln":
			return math.Log(x), nil
		case "sqrt":
			return math.Sqrt(x), nil
		}
		return 0, fmt.Errorf("unknown function %q", n.Func)
	}
	return 0, fmt.Errorf("unsupported expression node %T", e)
}

// ExprSpelling controls how FormatExpr writes target-specific names.
type ExprSpelling struct {
	Pi   string
	Func func(name string) string

	// Number rewrites a numeric literal; nil keeps the text as written.
	Number func(text string) string
}

// FormatExpr renders e with normalized spacing: " + " and " - " between
// terms, no spaces around * and /. Parentheses appear only where they were
// written.
func FormatExpr(e Expr, sp ExprSpelling) string {
	var b strings.Builder
	formatExpr(&b, e, sp)
	return b.String()
}

func formatExpr(b *strings.Builder, e Expr, sp ExprSpelling) {
	switch n := e.(type) {
	case Number:
		if sp.Number != nil {
			b.WriteString(sp.Number(n.Text))
		} else {
			b.WriteString(n.Text)
		}
	case Pi:
		if sp.Pi == "" {
			b.WriteString("pi")
		} else {
			b.WriteString(sp.Pi)
		}
	case Ident:
		b.WriteString(n.Name)
	case Paren:
		b.WriteByte('(')
		formatExpr(b, n.X, sp)
		b.WriteByte(')')
	case Unary:
		b.WriteByte(n.Op)
		formatExpr(b, n.X, sp)
	case Binary:
		formatExpr(b, n.L, sp)
		if n.Op == '+' || n.Op == '-' {
			b.WriteByte(' ')
			b.WriteByte(n.Op)
			b.WriteByte(' ')
		} else {
			b.WriteByte(n.Op)
		}
		formatExpr(b, n.R, sp)
	case Call:
		if sp.Func != nil {
			b.WriteString(sp.Func(n.Func))
		} else {
			b.WriteString(n.Func)
		}
		b.WriteByte('(')
		formatExpr(b, n.Arg, sp)
		b.WriteByte(')')
	}
}
