package ir

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// IRVersion is the circuit record schema version written by Record.
const IRVersion = "1.0.0"

// compatibleRange is the set of record versions this package can decode.
const compatibleRange = "^1"

var compatible = semver.MustParse(IRVersion)

// CheckVersion reports whether a record's ir_version can be decoded.
// An empty version is accepted as the current one.
func CheckVersion(v string) error {
	if v == "" {
		return nil
	}
	got, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid ir_version %q: %w", v, err)
	}
	c, err := semver.NewConstraint(compatibleRange)
	if err != nil {
		return fmt.Errorf("ir_version constraint: %w", err)
	}
	if !c.Check(got) {
		return fmt.Errorf("ir_version %s is not compatible with %s (want %s)", got, compatible, compatibleRange)
	}
	return nil
}
