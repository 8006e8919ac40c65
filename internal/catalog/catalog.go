package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed gates.cue
var gatesCUE string

// Spelling is how one target language writes a catalog gate.
// Adjoint means the target has no dedicated name and the gate is emitted as
// the adjoint of Name.
type Spelling struct {
	Name    string
	Adjoint bool
}

// Descriptor is the catalog entry for one canonical gate name.
// Descriptors are values; their slices and maps must be treated as read-only.
type Descriptor struct {
	Name   string
	Family Family

	// Targets, Controls and Params are the exact counts a gate instance must
	// carry. When Controllable is set the gate also accepts extra controls
	// beyond Controls (variable control arity).
	Targets      int
	Controls     int
	Controllable bool
	Params       int
	SelfInverse  bool

	controlled []string
	aliases    []string
	spellings  map[Target]Spelling
}

// Spelling returns the descriptor's spelling for a target.
func (d Descriptor) Spelling(t Target) (Spelling, bool) {
	s, ok := d.spellings[t]
	return s, ok
}

// NativeControlled returns the catalog name of the native gate equivalent to
// this gate with extra additional controls, if the catalog defines one.
func (d Descriptor) NativeControlled(extra int) (string, bool) {
	if extra < 1 || extra > len(d.controlled) {
		return "", false
	}
	return d.controlled[extra-1], true
}

// Aliases returns the alternative names that resolve to this entry.
func (d Descriptor) Aliases() []string {
	return slices.Clone(d.aliases)
}

// IsParameterized reports whether instances carry parameters.
func (d Descriptor) IsParameterized() bool {
	return d.Params > 0
}

// IsSelfInverseSingleQubit reports whether two back-to-back applications on
// the same qubit, with no controls, cancel.
func (d Descriptor) IsSelfInverseSingleQubit() bool {
	return d.SelfInverse && d.Targets == 1 && d.Controls == 0
}

// CheckArity verifies target, control and parameter counts of an instance.
func (d Descriptor) CheckArity(targets, controls, params int) error {
	if targets != d.Targets {
		return fmt.Errorf("gate %q expects %d target(s), got %d", d.Name, d.Targets, targets)
	}
	switch {
	case d.Controllable && controls < d.Controls:
		return fmt.Errorf("gate %q expects at least %d control(s), got %d", d.Name, d.Controls, controls)
	case !d.Controllable && controls != d.Controls:
		return fmt.Errorf("gate %q expects %d control(s), got %d", d.Name, d.Controls, controls)
	}
	if params != d.Params {
		return fmt.Errorf("gate %q expects %d parameter(s), got %d", d.Name, d.Params, params)
	}
	return nil
}

// Catalog is an immutable name -> Descriptor table.
type Catalog struct {
	entries map[string]Descriptor
	aliases map[string]string
	names   []string
	// bases maps a native controlled entry to its base gate and the number
	// of controls it adds.
	bases map[string]controlledBase
}

type controlledBase struct {
	name  string
	extra int
}

// Lookup resolves a gate name or alias, case-insensitively.
// A miss returns *UnknownGateError with Index -1.
func (c *Catalog) Lookup(name string) (Descriptor, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := c.aliases[key]; ok {
		key = canonical
	}
	d, ok := c.entries[key]
	if !ok {
		return Descriptor{}, &UnknownGateError{Name: name, Index: -1}
	}
	return d, nil
}

// Decompose maps a native controlled gate to its base gate and the number of
// controls it adds over the base, e.g. "ccx" -> ("x", 2). Any other name is
// returned unchanged with 0.
func (c *Catalog) Decompose(name string) (string, int) {
	if b, ok := c.bases[name]; ok {
		return b.name, b.extra
	}
	return name, 0
}

// Names returns the canonical gate names in sorted order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Len returns the number of canonical entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog compiled from the embedded gates.cue.
// Panics if the embedded definition is invalid.
func Default() *Catalog {
	defaultOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(gatesCUE, cue.Filename("gates.cue"))
		cat, err := Compile(v)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded gates.cue: %v", err))
		}
		defaultCatalog = cat
	})
	return defaultCatalog
}

// Extend compiles extra CUE gate definitions unified with the built-in ones.
// New gates may be added; conflicting redefinitions of existing entries fail.
func Extend(src []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()
	base := ctx.CompileString(gatesCUE, cue.Filename("gates.cue"))
	ext := ctx.CompileBytes(src, cue.Filename(filename))
	if err := ext.Err(); err != nil {
		return nil, formatCUEError("", "cue", err)
	}
	return Compile(base.Unify(ext))
}

// LoadFile reads a CUE file and extends the built-in catalog with it.
func LoadFile(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Extend(src, path)
}

// Compile builds a Catalog from a CUE value holding a top-level "gate" struct.
func Compile(v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("", "cue", err)
	}

	gatesVal := v.LookupPath(cue.ParsePath("gate"))
	if !gatesVal.Exists() {
		return nil, &CompileError{Field: "gate", Message: "gate definitions are required", Pos: v.Pos()}
	}
	if err := gatesVal.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError("", "gate", err)
	}

	cat := &Catalog{
		entries: make(map[string]Descriptor),
		aliases: make(map[string]string),
		bases:   make(map[string]controlledBase),
	}

	iter, err := gatesVal.Fields()
	if err != nil {
		return nil, formatCUEError("", "gate", err)
	}
	for iter.Next() {
		d, err := compileGate(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		cat.entries[d.Name] = d
		cat.names = append(cat.names, d.Name)
	}
	if len(cat.entries) == 0 {
		return nil, &CompileError{Field: "gate", Message: "at least one gate is required", Pos: gatesVal.Pos()}
	}
	slices.Sort(cat.names)

	if err := cat.link(); err != nil {
		return nil, err
	}
	return cat, nil
}

// link resolves aliases and cross-checks native controlled references.
func (c *Catalog) link() error {
	for _, name := range c.names {
		d := c.entries[name]
		for _, alias := range d.aliases {
			if _, clash := c.entries[alias]; clash {
				return &CompileError{Gate: name, Field: "aliases", Message: fmt.Sprintf("alias %q collides with a gate name", alias)}
			}
			if owner, dup := c.aliases[alias]; dup {
				return &CompileError{Gate: name, Field: "aliases", Message: fmt.Sprintf("alias %q already used by %q", alias, owner)}
			}
			c.aliases[alias] = name
		}
		for i, ctrlName := range d.controlled {
			native, ok := c.entries[ctrlName]
			if !ok {
				return &CompileError{Gate: name, Field: "controlled", Message: fmt.Sprintf("unknown native controlled gate %q", ctrlName)}
			}
			if native.Targets != d.Targets || native.Params != d.Params || native.Controls != d.Controls+i+1 {
				return &CompileError{Gate: name, Field: "controlled", Message: fmt.Sprintf("%q is not %q with %d extra control(s)", ctrlName, name, i+1)}
			}
			if prev, dup := c.bases[ctrlName]; dup {
				return &CompileError{Gate: name, Field: "controlled", Message: fmt.Sprintf("%q is already the controlled form of %q", ctrlName, prev.name)}
			}
			c.bases[ctrlName] = controlledBase{name: name, extra: i + 1}
		}
	}
	return nil
}

func compileGate(label string, v cue.Value) (Descriptor, error) {
	name := strings.ToLower(label)
	if name != label {
		return Descriptor{}, &CompileError{Gate: label, Field: "name", Message: "gate names must be lowercase", Pos: v.Pos()}
	}

	d := Descriptor{Name: name, spellings: make(map[Target]Spelling, len(Targets))}

	familyStr, err := lookupString(v, "family")
	if err != nil {
		return d, formatCUEError(name, "family", err)
	}
	if d.Family, err = parseFamily(familyStr); err != nil {
		return d, &CompileError{Gate: name, Field: "family", Message: err.Error(), Pos: v.Pos()}
	}

	if d.Targets, err = lookupInt(v, "targets"); err != nil {
		return d, formatCUEError(name, "targets", err)
	}
	if d.Controls, err = lookupInt(v, "controls"); err != nil {
		return d, formatCUEError(name, "controls", err)
	}
	if d.Params, err = lookupInt(v, "params"); err != nil {
		return d, formatCUEError(name, "params", err)
	}
	if d.Controllable, err = lookupBool(v, "controllable"); err != nil {
		return d, formatCUEError(name, "controllable", err)
	}
	if d.SelfInverse, err = lookupBool(v, "self_inverse"); err != nil {
		return d, formatCUEError(name, "self_inverse", err)
	}
	if d.controlled, err = lookupStrings(v, "controlled"); err != nil {
		return d, formatCUEError(name, "controlled", err)
	}
	if d.aliases, err = lookupStrings(v, "aliases"); err != nil {
		return d, formatCUEError(name, "aliases", err)
	}
	for i, a := range d.aliases {
		d.aliases[i] = strings.ToLower(a)
	}

	if d.SelfInverse && !d.IsSelfInverseSingleQubit() {
		return d, &CompileError{Gate: name, Field: "self_inverse", Message: "only single-target gates without controls may be self-inverse", Pos: v.Pos()}
	}

	for _, t := range Targets {
		spellVal := v.LookupPath(cue.MakePath(cue.Str("spell"), cue.Str(t.String())))
		if !spellVal.Exists() {
			return d, &CompileError{Gate: name, Field: "spell." + t.String(), Message: "spelling is required for every target", Pos: v.Pos()}
		}
		s, err := compileSpelling(spellVal)
		if err != nil {
			return d, formatCUEError(name, "spell."+t.String(), err)
		}
		d.spellings[t] = s
	}

	return d, nil
}

func compileSpelling(v cue.Value) (Spelling, error) {
	var s Spelling
	var err error
	if s.Name, err = lookupString(v, "name"); err != nil {
		return s, err
	}
	if s.Adjoint, err = lookupBool(v, "adjoint"); err != nil {
		return s, err
	}
	return s, nil
}

func field(v cue.Value, name string) (cue.Value, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return f, fmt.Errorf("field %q is missing", name)
	}
	d, _ := f.Default()
	return d, nil
}

func lookupString(v cue.Value, name string) (string, error) {
	f, err := field(v, name)
	if err != nil {
		return "", err
	}
	return f.String()
}

func lookupInt(v cue.Value, name string) (int, error) {
	f, err := field(v, name)
	if err != nil {
		return 0, err
	}
	n, err := f.Int64()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func lookupBool(v cue.Value, name string) (bool, error) {
	f, err := field(v, name)
	if err != nil {
		return false, err
	}
	return f.Bool()
}

func lookupStrings(v cue.Value, name string) ([]string, error) {
	f, err := field(v, name)
	if err != nil {
		return nil, err
	}
	iter, err := f.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
