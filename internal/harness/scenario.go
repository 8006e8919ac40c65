package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/ir"
)

// Scenario defines a conformance test scenario: an input circuit, the passes
// to run on it, the targets to lower the result to, and what to expect.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is an optional CUE file extending the built-in gate catalog.
	// Relative paths are resolved against the scenario file's directory.
	Catalog string `yaml:"catalog,omitempty"`

	// Circuit is the input circuit in transport form. Cached gate_counts
	// and depth, when present, are verified before any pass runs.
	Circuit ir.Record `yaml:"circuit"`

	// Passes are applied in order. Empty means the circuit is only lowered.
	Passes []string `yaml:"passes,omitempty"`

	// Targets are selectors accepted by catalog.ParseTarget.
	Targets []string `yaml:"targets,omitempty"`

	// Expect describes the optimized circuit or the expected failure.
	Expect ExpectClause `yaml:"expect"`
}

// ExpectClause specifies the expected outcome. Exactly one of the result
// fields or Error is meaningful: a scenario either succeeds or fails.
type ExpectClause struct {
	// Gates is the expected gate-name sequence after all passes.
	Gates []string `yaml:"gates,omitempty"`

	// GateCounts is the expected histogram after all passes.
	GateCounts map[string]int `yaml:"gate_counts,omitempty"`

	// Depth is the expected depth after all passes.
	Depth *int `yaml:"depth,omitempty"`

	// Error, when set, makes the scenario expect a failure.
	Error *ErrorClause `yaml:"error,omitempty"`
}

// ErrorClause matches a failure by kind and, optionally, message text.
type ErrorClause struct {
	// Kind is one of the Err* constants.
	Kind string `yaml:"kind"`

	// Contains is a substring the error message must include.
	Contains string `yaml:"contains,omitempty"`
}

// Error kind constants.
const (
	ErrMalformed   = "malformed"
	ErrUnknownGate = "unknown_gate"
	ErrUnknownPass = "unknown_pass"
	ErrUnsupported = "unsupported"
	ErrStaleStats  = "stale_stats"
)

var errorKinds = []string{ErrMalformed, ErrUnknownGate, ErrUnknownPass, ErrUnsupported, ErrStaleStats}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "pass:" vs "passes:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the catalog path BEFORE validation
	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Circuit validity is not checked here: a malformed circuit is a legitimate
// scenario when it expects ErrMalformed.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Catalog != "" {
		if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog file not found: %s", s.Catalog)
		}
	}

	for i, t := range s.Targets {
		if _, err := catalog.ParseTarget(t); err != nil {
			return fmt.Errorf("targets[%d]: %w", i, err)
		}
	}

	e := s.Expect
	if e.Error != nil {
		if !slices.Contains(errorKinds, e.Error.Kind) {
			return fmt.Errorf("expect.error: kind %q must be one of %v", e.Error.Kind, errorKinds)
		}
		if e.Gates != nil || e.GateCounts != nil || e.Depth != nil {
			return fmt.Errorf("expect.error cannot be combined with gates, gate_counts, or depth")
		}
		return nil
	}

	if e.Gates == nil && e.GateCounts == nil && e.Depth == nil && len(s.Targets) == 0 {
		return fmt.Errorf("expect must name gates, gate_counts, depth, or error, or the scenario must list targets")
	}

	return nil
}
