package passes

import (
	"fmt"

	"github.com/roach88/qcanvas/internal/ir"
)

// Transform rewrites a circuit into a new circuit. It must not modify its
// input.
type Transform func(c *ir.Circuit) (*ir.Circuit, error)

// Pass is a named transform.
type Pass struct {
	Name        string
	Description string
	// InvalidatesStats marks passes that may change the gate list.
	InvalidatesStats bool
	Transform        Transform
}

// Registry maps pass names to passes. It is immutable after construction.
type Registry struct {
	passes map[string]Pass
	order  []string
}

// NewRegistry builds a registry. Names must be non-empty and unique.
func NewRegistry(passes ...Pass) (*Registry, error) {
	r := &Registry{passes: make(map[string]Pass, len(passes))}
	for _, p := range passes {
		if p.Name == "" {
			return nil, fmt.Errorf("pass name is required")
		}
		if p.Transform == nil {
			return nil, fmt.Errorf("pass %q has no transform", p.Name)
		}
		if _, dup := r.passes[p.Name]; dup {
			return nil, fmt.Errorf("pass %q registered twice", p.Name)
		}
		r.passes[p.Name] = p
		r.order = append(r.order, p.Name)
	}
	return r, nil
}

// DefaultRegistry returns the built-in passes.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		Pass{
			Name:             RemoveSelfInversePairs,
			Description:      "cancel adjacent identical self-inverse single-qubit gates on the same qubit",
			InvalidatesStats: true,
			Transform:        removeSelfInversePairs,
		},
		Pass{
			Name:             RemoveIdentityGates,
			Description:      "drop identity gates, controlled or not",
			InvalidatesStats: true,
			Transform:        removeIdentityGates,
		},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the pass registered under name. Names are matched exactly.
func (r *Registry) Lookup(name string) (Pass, error) {
	p, ok := r.passes[name]
	if !ok {
		return Pass{}, &UnknownPassError{Name: name}
	}
	return p, nil
}

// Passes returns the registered passes in registration order.
func (r *Registry) Passes() []Pass {
	out := make([]Pass, len(r.order))
	for i, name := range r.order {
		out[i] = r.passes[name]
	}
	return out
}
