package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	cat := Default()
	require.NotNil(t, cat)
	assert.Equal(t, len(cat.Names()), cat.Len())
	assert.Contains(t, cat.Names(), "h")
	assert.Contains(t, cat.Names(), "cx")
	assert.Contains(t, cat.Names(), "ccx")
	assert.IsNonDecreasing(t, cat.Names())
}

func TestLookupAliasesAndCase(t *testing.T) {
	cat := Default()

	tests := []struct {
		in   string
		want string
	}{
		{"H", "h"},
		{"cnot", "cx"},
		{"CNOT", "cx"},
		{"toffoli", "ccx"},
		{"fredkin", "cswap"},
		{"u3", "u"},
		{"u1", "p"},
		{"cu1", "cp"},
		{" rx ", "rx"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := cat.Lookup(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Default().Lookup("foo")
	require.Error(t, err)
	assert.True(t, IsUnknownGate(err))
	assert.Equal(t, `unknown gate "foo"`, err.Error())

	assert.Equal(t, `unknown gate "foo" at index 3`, UnknownGateAt("foo", 3).Error())
}

func TestSelfInverseSingleQubit(t *testing.T) {
	cat := Default()

	for _, name := range []string{"h", "x", "y", "z"} {
		d, err := cat.Lookup(name)
		require.NoError(t, err)
		assert.True(t, d.IsSelfInverseSingleQubit(), name)
	}
	for _, name := range []string{"s", "t", "rx", "cx", "ccx", "swap", "id"} {
		d, err := cat.Lookup(name)
		require.NoError(t, err)
		assert.False(t, d.IsSelfInverseSingleQubit(), name)
	}
}

func TestCheckArity(t *testing.T) {
	cat := Default()

	tests := []struct {
		name     string
		gate     string
		targets  int
		controls int
		params   int
		wantErr  string
	}{
		{"h plain", "h", 1, 0, 0, ""},
		{"h with extra controls", "h", 1, 2, 0, ""},
		{"h two targets", "h", 2, 0, 0, "expects 1 target(s), got 2"},
		{"rx missing param", "rx", 1, 0, 0, "expects 1 parameter(s), got 0"},
		{"cx exact", "cx", 1, 1, 0, ""},
		{"cx extra control", "cx", 1, 2, 0, "expects 1 control(s), got 2"},
		{"cx missing control", "cx", 1, 0, 0, "expects 1 control(s), got 0"},
		{"u three params", "u", 1, 0, 3, ""},
		{"swap", "swap", 2, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := cat.Lookup(tt.gate)
			require.NoError(t, err)
			err = d.CheckArity(tt.targets, tt.controls, tt.params)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSpellings(t *testing.T) {
	cat := Default()

	sxdg, err := cat.Lookup("sxdg")
	require.NoError(t, err)

	s, ok := sxdg.Spelling(TargetQASM3)
	require.True(t, ok)
	assert.Equal(t, Spelling{Name: "sx", Adjoint: true}, s)

	s, ok = sxdg.Spelling(TargetQASM2)
	require.True(t, ok)
	assert.Equal(t, Spelling{Name: "sxdg"}, s)

	s, ok = sxdg.Spelling(TargetPennyLane)
	require.True(t, ok)
	assert.Equal(t, Spelling{Name: "SX", Adjoint: true}, s)

	h, err := cat.Lookup("h")
	require.NoError(t, err)
	for _, target := range Targets {
		_, ok := h.Spelling(target)
		assert.True(t, ok, target.String())
	}
}

func TestNativeControlled(t *testing.T) {
	cat := Default()

	x, err := cat.Lookup("x")
	require.NoError(t, err)

	name, ok := x.NativeControlled(1)
	assert.True(t, ok)
	assert.Equal(t, "cx", name)

	name, ok = x.NativeControlled(2)
	assert.True(t, ok)
	assert.Equal(t, "ccx", name)

	_, ok = x.NativeControlled(3)
	assert.False(t, ok)

	_, ok = x.NativeControlled(0)
	assert.False(t, ok)
}

func TestDecompose(t *testing.T) {
	cat := Default()

	tests := []struct {
		in    string
		base  string
		extra int
	}{
		{"cx", "x", 1},
		{"ccx", "x", 2},
		{"ch", "h", 1},
		{"cp", "p", 1},
		{"cswap", "swap", 1},
		{"h", "h", 0},
		{"nope", "nope", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			base, extra := cat.Decompose(tt.in)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.extra, extra)
		})
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		want Target
	}{
		{"assembly", TargetQASM3},
		{"QASM3", TargetQASM3},
		{"qasm2", TargetQASM2},
		{"script", TargetPennyLane},
		{"PennyLane", TargetPennyLane},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"verilog", "", "qasm 3", "assembly2"} {
		t.Run("reject/"+bad, func(t *testing.T) {
			_, err := ParseTarget(bad)
			require.Error(t, err)
			assert.True(t, IsUnknownTarget(err))
			assert.Contains(t, err.Error(), "unknown target")
		})
	}
}

func TestExtendAddsGate(t *testing.T) {
	cat, err := Extend([]byte(`
gate: iswap: {
	family:  "permutation"
	targets: 2
	spell: {
		qasm3: name:     "iswap"
		qasm2: name:     "iswap"
		pennylane: name: "ISWAP"
	}
}
`), "extra.cue")
	require.NoError(t, err)

	d, err := cat.Lookup("iswap")
	require.NoError(t, err)
	assert.Equal(t, FamilyPermutation, d.Family)
	assert.Equal(t, 2, d.Targets)
	assert.Equal(t, Default().Len()+1, cat.Len())

	// The built-in catalog is unaffected.
	_, err = Default().Lookup("iswap")
	assert.True(t, IsUnknownGate(err))
}

func TestExtendConflict(t *testing.T) {
	_, err := Extend([]byte(`gate: h: family: "rotation"`), "bad.cue")
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
}

func TestExtendMissingSpelling(t *testing.T) {
	_, err := Extend([]byte(`
gate: foo: {
	family: "phase"
	spell: {
		qasm3: name: "foo"
		qasm2: name: "foo"
	}
}
`), "partial.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pennylane")
}

func TestCompileRejectsBadControlledReference(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
gate: a: {
	family: "phase"
	targets: 1
	controls: 0
	controllable: true
	params: 0
	self_inverse: false
	controlled: ["ca"]
	aliases: []
	spell: {
		qasm3: {name: "a", adjoint: false}
		qasm2: {name: "a", adjoint: false}
		pennylane: {name: "A", adjoint: false}
	}
}
`)
	require.NoError(t, v.Err())

	_, err := Compile(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown native controlled gate "ca"`)
}

func TestCompileRejectsUnknownFamily(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
gate: a: {
	family: "exotic"
	targets: 1
	controls: 0
	controllable: false
	params: 0
	self_inverse: false
	controlled: []
	aliases: []
	spell: {
		qasm3: {name: "a", adjoint: false}
		qasm2: {name: "a", adjoint: false}
		pennylane: {name: "A", adjoint: false}
	}
}
`)
	require.NoError(t, v.Err())

	_, err := Compile(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "family")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
gate: sy: {
	family: "clifford"
	spell: {
		qasm3: name:     "sy"
		qasm2: name:     "sy"
		pennylane: name: "SY"
	}
}
`), 0o644))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	_, err = cat.Lookup("sy")
	assert.NoError(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read catalog file")
}
