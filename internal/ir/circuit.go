package ir

import (
	"maps"
	"slices"

	"github.com/roach88/qcanvas/internal/catalog"
)

// Metadata is optional free-form circuit description.
type Metadata struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Stats holds a gate-name histogram and the circuit depth.
type Stats struct {
	GateCounts map[string]int `json:"gate_counts" yaml:"gate_counts"`
	Depth      int            `json:"depth" yaml:"depth"`
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	return Stats{GateCounts: maps.Clone(s.GateCounts), Depth: s.Depth}
}

// Equal reports whether two Stats hold the same counts and depth.
// A nil histogram equals an empty one.
func (s Stats) Equal(o Stats) bool {
	if s.Depth != o.Depth || len(s.GateCounts) != len(o.GateCounts) {
		return false
	}
	for k, v := range s.GateCounts {
		if ov, ok := o.GateCounts[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Circuit is an immutable, validated gate sequence over NumQubits qubits.
// There are no mutators; WithGates and WithStats return new values.
type Circuit struct {
	numQubits int
	gates     []Gate
	metadata  *Metadata
	stats     *Stats
	catalog   *catalog.Catalog
}

// CircuitOption configures New.
type CircuitOption func(*Circuit)

// WithMetadata attaches metadata.
func WithMetadata(m Metadata) CircuitOption {
	return func(c *Circuit) {
		c.metadata = &m
	}
}

// WithCachedStats attaches previously computed statistics. They are not
// recomputed here; see stats.Verify.
func WithCachedStats(s Stats) CircuitOption {
	return func(c *Circuit) {
		cp := s.Clone()
		c.stats = &cp
	}
}

// WithCatalog validates gates against cat instead of catalog.Default().
func WithCatalog(cat *catalog.Catalog) CircuitOption {
	return func(c *Circuit) {
		c.catalog = cat
	}
}

// New validates and builds a Circuit.
//
// Every gate name must resolve in the catalog (aliases are rewritten to the
// canonical name), arity must match the catalog entry, qubit indices must
// lie in [0, numQubits) and a gate may not touch the same qubit twice.
// Unknown names fail with *catalog.UnknownGateError; every other violation
// fails with *MalformedCircuitError.
func New(numQubits int, gates []Gate, opts ...CircuitOption) (*Circuit, error) {
	c := &Circuit{numQubits: numQubits}
	for _, opt := range opts {
		opt(c)
	}
	if c.catalog == nil {
		c.catalog = catalog.Default()
	}

	if numQubits < 1 {
		return nil, malformed(-1, "", "num_qubits must be positive, got %d", numQubits)
	}

	c.gates = make([]Gate, len(gates))
	for i, g := range gates {
		canonical, err := c.validateGate(i, g)
		if err != nil {
			return nil, err
		}
		c.gates[i] = g.withName(canonical)
	}
	return c, nil
}

func (c *Circuit) validateGate(i int, g Gate) (string, error) {
	if g.name == "" {
		return "", malformed(i, "", "gate name is empty")
	}
	d, err := c.catalog.Lookup(g.name)
	if err != nil {
		return "", catalog.UnknownGateAt(g.name, i)
	}
	if err := d.CheckArity(len(g.targets), len(g.controls), len(g.params)); err != nil {
		return "", malformed(i, d.Name, "%v", err)
	}

	seen := make(map[int]bool, len(g.targets)+len(g.controls))
	for _, q := range g.Qubits() {
		if q < 0 || q >= c.numQubits {
			return "", malformed(i, d.Name, "qubit index %d out of range [0, %d)", q, c.numQubits)
		}
		if seen[q] {
			return "", malformed(i, d.Name, "qubit %d is used more than once", q)
		}
		seen[q] = true
	}

	for j, p := range g.params {
		if err := validateParam(p); err != nil {
			return "", malformed(i, d.Name, "parameter %d: %v", j, err)
		}
	}
	return d.Name, nil
}

// NumQubits returns the register size.
func (c *Circuit) NumQubits() int { return c.numQubits }

// Len returns the number of gates.
func (c *Circuit) Len() int { return len(c.gates) }

// Gate returns the gate at index i.
func (c *Circuit) Gate(i int) Gate { return c.gates[i] }

// Gates returns the gates in execution order.
func (c *Circuit) Gates() []Gate { return slices.Clone(c.gates) }

// Metadata returns the circuit metadata, if any.
func (c *Circuit) Metadata() (Metadata, bool) {
	if c.metadata == nil {
		return Metadata{}, false
	}
	return *c.metadata, true
}

// Stats returns the cached statistics, if any.
func (c *Circuit) Stats() (Stats, bool) {
	if c.stats == nil {
		return Stats{}, false
	}
	return c.stats.Clone(), true
}

// Catalog returns the catalog the circuit was validated against.
func (c *Circuit) Catalog() *catalog.Catalog { return c.catalog }

// WithGates returns a new circuit with the same qubit count, metadata and
// catalog but a different gate list. Cached statistics are dropped.
func (c *Circuit) WithGates(gates []Gate) (*Circuit, error) {
	opts := []CircuitOption{WithCatalog(c.catalog)}
	if c.metadata != nil {
		opts = append(opts, WithMetadata(*c.metadata))
	}
	return New(c.numQubits, gates, opts...)
}

// WithStats returns a copy of c carrying s as its cached statistics.
func (c *Circuit) WithStats(s Stats) *Circuit {
	cp := *c
	st := s.Clone()
	cp.stats = &st
	return &cp
}

// WithoutStats returns a copy of c with no cached statistics.
func (c *Circuit) WithoutStats() *Circuit {
	cp := *c
	cp.stats = nil
	return &cp
}
