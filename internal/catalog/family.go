package catalog

import "fmt"

// Family is the closed set of gate families known to the catalog.
type Family int

const (
	FamilyIdentity Family = iota
	FamilyPauli
	FamilyClifford
	FamilyPhase
	FamilyRotation
	FamilyUnitary
	FamilyControlled
	FamilyPermutation
)

func (f Family) String() string {
	switch f {
	case FamilyIdentity:
		return "identity"
	case FamilyPauli:
		return "pauli"
	case FamilyClifford:
		return "clifford"
	case FamilyPhase:
		return "phase"
	case FamilyRotation:
		return "rotation"
	case FamilyUnitary:
		return "unitary"
	case FamilyControlled:
		return "controlled"
	case FamilyPermutation:
		return "permutation"
	default:
		return "unknown"
	}
}

func parseFamily(s string) (Family, error) {
	switch s {
	case "identity":
		return FamilyIdentity, nil
	case "pauli":
		return FamilyPauli, nil
	case "clifford":
		return FamilyClifford, nil
	case "phase":
		return FamilyPhase, nil
	case "rotation":
		return FamilyRotation, nil
	case "unitary":
		return FamilyUnitary, nil
	case "controlled":
		return FamilyControlled, nil
	case "permutation":
		return FamilyPermutation, nil
	default:
		return 0, fmt.Errorf("unknown gate family %q", s)
	}
}
