package ir

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parameter is a sealed union of gate parameter kinds.
// Only Numeric and Symbolic implement it; consumers switch on both.
type Parameter interface {
	// String returns the parameter as it appears in a circuit record.
	String() string
	parameter()
}

// Numeric is a numeric literal parameter. It must be finite.
type Numeric float64

func (Numeric) parameter() {}

// Value returns the parameter as a float64.
func (n Numeric) Value() float64 { return float64(n) }

// String returns the shortest decimal that round-trips to the same float64.
func (n Numeric) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// Symbolic is an expression parameter such as "pi/2" or "theta + pi/4".
// The original text is preserved verbatim; the parsed tree drives rendering.
type Symbolic struct {
	text string
	tree Expr
}

func (Symbolic) parameter() {}

// ParseSymbolic parses a symbolic expression.
func ParseSymbolic(s string) (Symbolic, error) {
	text := strings.TrimSpace(s)
	tree, err := ParseExpr(text)
	if err != nil {
		return Symbolic{}, fmt.Errorf("symbolic parameter %q: %w", s, err)
	}
	if err := checkConstants(tree); err != nil {
		return Symbolic{}, fmt.Errorf("symbolic parameter %q: %w", s, err)
	}
	return Symbolic{text: text, tree: tree}, nil
}

// checkConstants evaluates every sub-expression without free symbols and
// rejects those that are undefined or not finite, such as pi/0 or ln(0).
func checkConstants(e Expr) error {
	if len(FreeSymbols(e)) == 0 {
		v, err := Eval(e, nil)
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not a finite number", FormatExpr(e, ExprSpelling{}))
		}
		return nil
	}
	switch n := e.(type) {
	case Unary:
		return checkConstants(n.X)
	case Paren:
		return checkConstants(n.X)
	case Call:
		return checkConstants(n.Arg)
	case Binary:
		if err := checkConstants(n.L); err != nil {
			return err
		}
		if err := checkConstants(n.R); err != nil {
			return err
		}
		if n.Op == '/' && len(FreeSymbols(n.R)) == 0 {
			if r, _ := Eval(n.R, nil); r == 0 {
				return fmt.Errorf("division by zero")
			}
		}
	}
	return nil
}

// MustSymbolic is like ParseSymbolic but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSymbolic(s string) Symbolic {
	sym, err := ParseSymbolic(s)
	if err != nil {
		panic(err)
	}
	return sym
}

// String returns the expression as written.
func (s Symbolic) String() string { return s.text }

// Tree returns the parsed expression, or nil for the zero Symbolic.
func (s Symbolic) Tree() Expr { return s.tree }

// FreeSymbols returns the identifiers the expression depends on.
func (s Symbolic) FreeSymbols() []string {
	if s.tree == nil {
		return nil
	}
	return FreeSymbols(s.tree)
}

// validateParam checks the per-kind invariants of a parameter.
func validateParam(p Parameter) error {
	switch v := p.(type) {
	case Numeric:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("numeric parameter must be finite, got %v", float64(v))
		}
		return nil
	case Symbolic:
		if v.tree == nil {
			return fmt.Errorf("symbolic parameter is empty")
		}
		return nil
	case nil:
		return fmt.Errorf("parameter is nil")
	default:
		return fmt.Errorf("unsupported parameter type %T", p)
	}
}

// ParseParameter reads a parameter from its record text: a plain decimal
// becomes Numeric, anything else must parse as a Symbolic expression.
func ParseParameter(s string) (Parameter, error) {
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("numeric parameter must be finite, got %q", s)
		}
		return Numeric(v), nil
	}
	sym, err := ParseSymbolic(s)
	if err != nil {
		return nil, err
	}
	return sym, nil
}

// ParamEqual compares two parameters by kind and record text. Symbolic
// expressions are never compared by value.
func ParamEqual(a, b Parameter) bool {
	switch av := a.(type) {
	case Numeric:
		bv, ok := b.(Numeric)
		return ok && av == bv
	case Symbolic:
		bv, ok := b.(Symbolic)
		return ok && av.text == bv.text
	}
	return false
}
