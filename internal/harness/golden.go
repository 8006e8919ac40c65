package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qcanvas/internal/ir"
)

// Snapshot captures the target-independent outcome of a scenario.
// It uses canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string         `json:"scenario"`
	Gates        []string       `json:"gates,omitempty"`
	GateCounts   map[string]int `json:"gate_counts,omitempty"`
	Depth        int            `json:"depth"`
	GatesBefore  int            `json:"gates_before"`
	DepthBefore  int            `json:"depth_before"`
	Error        string         `json:"error,omitempty"`
}

// NewSnapshot builds the snapshot of a finished scenario.
func NewSnapshot(name string, result *Result) Snapshot {
	if result.Err != nil {
		return Snapshot{ScenarioName: name, Error: kindOrOther(ErrorKind(result.Err))}
	}
	return Snapshot{
		ScenarioName: name,
		Gates:        result.Gates,
		GateCounts:   result.Stats.GateCounts,
		Depth:        result.Stats.Depth,
		GatesBefore:  result.Run.GatesBefore,
		DepthBefore:  result.Run.DepthBefore,
	}
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles primitives, slices and maps.
func (s Snapshot) toCanonicalMap() map[string]any {
	if s.Error != "" {
		return map[string]any{
			"scenario": s.ScenarioName,
			"error":    s.Error,
		}
	}

	gates := make([]any, len(s.Gates))
	for i, g := range s.Gates {
		gates[i] = g
	}
	counts := make(map[string]any, len(s.GateCounts))
	for k, v := range s.GateCounts {
		counts[k] = v
	}
	return map[string]any{
		"scenario":     s.ScenarioName,
		"gates":        gates,
		"gate_counts":  counts,
		"depth":        s.Depth,
		"gates_before": s.GatesBefore,
		"depth_before": s.DepthBefore,
	}
}

// RunWithGolden executes a scenario and compares its outcome against golden
// files in testdata/golden:
//
//	{scenario.Name}.golden           canonical JSON snapshot
//	{scenario.Name}.{target}.golden  lowered program, one per target
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails or its expectations do not hold.
// Test failure (via goldie) occurs if output doesn't match a golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed:\n%s", scenario.Name, strings.Join(result.Errors, "\n"))
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against golden files without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	files, err := GoldenFiles(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, name := range slices.Sorted(maps.Keys(files)) {
		g.Assert(t, name, files[name])
	}

	return nil
}

// GoldenFiles returns the golden contents for a finished scenario, keyed by
// file name without the ".golden" suffix.
func GoldenFiles(scenarioName string, result *Result) (map[string][]byte, error) {
	snapshotJSON, err := ir.MarshalCanonical(NewSnapshot(scenarioName, result).toCanonicalMap())
	if err != nil {
		return nil, err
	}

	files := map[string][]byte{scenarioName: snapshotJSON}
	for target, text := range result.Outputs {
		files[scenarioName+"."+target] = []byte(text)
	}
	return files, nil
}
