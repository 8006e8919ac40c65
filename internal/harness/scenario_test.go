package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qcanvas/internal/ir"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "test.yaml", `
name: test_scenario
description: "Test scenario for validation"
circuit:
  num_qubits: 2
  gates:
    - {name: h, targets: [0], controls: [], parameters: []}
    - {name: rx, targets: [1], controls: [0], parameters: ["theta/2", 0.5]}
passes: [remove_self_inverse_pairs]
targets: [assembly, script]
expect:
  gates: [h, rx]
  gate_counts: {h: 1, rx: 1}
  depth: 2
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, 2, scenario.Circuit.NumQubits)
	require.Len(t, scenario.Circuit.Gates, 2)
	rx := scenario.Circuit.Gates[1]
	assert.Equal(t, []int{0}, rx.Controls)
	require.Len(t, rx.Parameters, 2)
	assert.Equal(t, ir.MustSymbolic("theta/2"), rx.Parameters[0].Param)
	assert.Equal(t, ir.Numeric(0.5), rx.Parameters[1].Param)
	assert.Equal(t, []string{"remove_self_inverse_pairs"}, scenario.Passes)
	assert.Equal(t, []string{"assembly", "script"}, scenario.Targets)
	require.NotNil(t, scenario.Expect.Depth)
	assert.Equal(t, 2, *scenario.Expect.Depth)
}

func TestLoadScenario_ResolvesCatalogPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.cue"), []byte(`gate: {}`), 0644))
	path := writeScenario(t, dir, "test.yaml", `
name: with_catalog
description: "Uses an extension catalog"
catalog: extra.cue
circuit: {num_qubits: 1, gates: []}
expect: {gates: []}
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "extra.cue"), scenario.Catalog)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: a\ndescription: b\npass: [x]\nexpect: {depth: 1}\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: b\nexpect: {depth: 1}\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: a\nexpect: {depth: 1}\n",
			wantErr: "description is required",
		},
		{
			name:    "empty expectation",
			content: "name: a\ndescription: b\ncircuit: {num_qubits: 1, gates: []}\n",
			wantErr: "expect must name",
		},
		{
			name:    "bad target",
			content: "name: a\ndescription: b\ntargets: [verilog]\nexpect: {depth: 0}\n",
			wantErr: "targets[0]",
		},
		{
			name:    "bad error kind",
			content: "name: a\ndescription: b\nexpect: {error: {kind: explosion}}\n",
			wantErr: `kind "explosion"`,
		},
		{
			name:    "error combined with result",
			content: "name: a\ndescription: b\nexpect: {depth: 1, error: {kind: malformed}}\n",
			wantErr: "cannot be combined",
		},
		{
			name:    "missing catalog",
			content: "name: a\ndescription: b\ncatalog: nope.cue\nexpect: {depth: 1}\n",
			wantErr: "catalog file not found",
		},
		{
			name:    "bad parameter",
			content: "name: a\ndescription: b\ncircuit: {num_qubits: 1, gates: [{name: rx, targets: [0], controls: [], parameters: [[1]]}]}\nexpect: {depth: 1}\n",
			wantErr: "parameter must be a scalar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "s.yaml", tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_TargetsOnly(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "s.yaml", `
name: lower_only
description: "Only lowering is checked, through golden files"
circuit:
  num_qubits: 1
  gates:
    - {name: x, targets: [0], controls: [], parameters: []}
targets: [qasm3]
expect: {}
`)
	_, err := LoadScenario(path)
	require.NoError(t, err)
}
