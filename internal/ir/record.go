package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Record is the transport shape of a Circuit.
type Record struct {
	IRVersion  string         `json:"ir_version,omitempty" yaml:"ir_version,omitempty"`
	NumQubits  int            `json:"num_qubits" yaml:"num_qubits"`
	Gates      []GateRecord   `json:"gates" yaml:"gates"`
	Metadata   *Metadata      `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	GateCounts map[string]int `json:"gate_counts,omitempty" yaml:"gate_counts,omitempty"`
	Depth      *int           `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// GateRecord is the transport shape of a Gate.
type GateRecord struct {
	Name       string        `json:"name" yaml:"name"`
	Targets    []int         `json:"targets" yaml:"targets,flow"`
	Controls   []int         `json:"controls" yaml:"controls,flow"`
	Parameters []ParamRecord `json:"parameters" yaml:"parameters,flow"`
}

// ParamRecord wraps a Parameter for encoding: numbers encode as JSON/YAML
// numbers, symbolic expressions as strings.
type ParamRecord struct {
	Param Parameter
}

// MarshalJSON implements json.Marshaler.
func (p ParamRecord) MarshalJSON() ([]byte, error) {
	switch v := p.Param.(type) {
	case Numeric:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("numeric parameter must be finite")
		}
		return []byte(v.String()), nil
	case Symbolic:
		return json.Marshal(v.String())
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", p.Param)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ParamRecord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		sym, err := ParseSymbolic(s)
		if err != nil {
			return err
		}
		p.Param = sym
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parameter must be a number or a string, got %s", data)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("parameter %s: %w", n, err)
	}
	p.Param = Numeric(f)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p ParamRecord) MarshalYAML() (any, error) {
	switch v := p.Param.(type) {
	case Numeric:
		return float64(v), nil
	case Symbolic:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.String(), Style: yaml.DoubleQuotedStyle}, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", p.Param)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *ParamRecord) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: parameter must be a scalar", node.Line)
	}
	switch node.ShortTag() {
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: parameter %q: %w", node.Line, node.Value, err)
		}
		p.Param = Numeric(f)
		return nil
	case "!!str":
		sym, err := ParseSymbolic(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		p.Param = sym
		return nil
	default:
		return fmt.Errorf("line %d: parameter must be a number or a string, got %s", node.Line, node.ShortTag())
	}
}

// Record returns the circuit's transport shape, including cached stats when
// present.
func (c *Circuit) Record() Record {
	r := Record{
		IRVersion: IRVersion,
		NumQubits: c.numQubits,
		Gates:     make([]GateRecord, len(c.gates)),
	}
	for i, g := range c.gates {
		gr := GateRecord{
			Name:       g.name,
			Targets:    append([]int{}, g.targets...),
			Controls:   append([]int{}, g.controls...),
			Parameters: make([]ParamRecord, len(g.params)),
		}
		for j, p := range g.params {
			gr.Parameters[j] = ParamRecord{Param: p}
		}
		r.Gates[i] = gr
	}
	if c.metadata != nil {
		m := *c.metadata
		r.Metadata = &m
	}
	if c.stats != nil {
		s := c.stats.Clone()
		if s.GateCounts == nil {
			s.GateCounts = map[string]int{}
		}
		r.GateCounts = s.GateCounts
		r.Depth = &s.Depth
	}
	return r
}

// FromRecord validates a record and builds a Circuit. Cached stats in the
// record are kept as given; gate_counts and depth must appear together.
func FromRecord(r Record, opts ...CircuitOption) (*Circuit, error) {
	if err := CheckVersion(r.IRVersion); err != nil {
		return nil, malformed(-1, "", "%v", err)
	}

	gates := make([]Gate, len(r.Gates))
	for i, gr := range r.Gates {
		params := make([]Parameter, len(gr.Parameters))
		for j, pr := range gr.Parameters {
			if pr.Param == nil {
				return nil, malformed(i, gr.Name, "parameter %d is missing", j)
			}
			params[j] = pr.Param
		}
		gates[i] = NewGate(gr.Name, gr.Targets, gr.Controls, params...)
	}

	if r.Metadata != nil {
		opts = append(opts, WithMetadata(*r.Metadata))
	}
	switch {
	case r.Depth != nil && r.GateCounts != nil:
		opts = append(opts, WithCachedStats(Stats{GateCounts: r.GateCounts, Depth: *r.Depth}))
	case r.Depth != nil || r.GateCounts != nil:
		return nil, malformed(-1, "", "gate_counts and depth must be given together")
	}

	return New(r.NumQubits, gates, opts...)
}

// DecodeJSON reads a JSON circuit record. Unknown fields are rejected.
func DecodeJSON(r io.Reader, opts ...CircuitOption) (*Circuit, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode circuit JSON: %w", err)
	}
	return FromRecord(rec, opts...)
}

// DecodeYAML reads a YAML circuit record. Unknown fields are rejected.
func DecodeYAML(r io.Reader, opts ...CircuitOption) (*Circuit, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode circuit YAML: %w", err)
	}
	return FromRecord(rec, opts...)
}

// EncodeJSON writes the circuit record as indented JSON.
func EncodeJSON(w io.Writer, c *Circuit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c.Record())
}

// EncodeYAML writes the circuit record as YAML.
func EncodeYAML(w io.Writer, c *Circuit) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Record()); err != nil {
		return err
	}
	return enc.Close()
}
