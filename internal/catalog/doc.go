// Package catalog provides the static gate catalog for qcanvas.
//
// The catalog maps a canonical lowercase gate name to a Descriptor holding
// its arity (targets, controls, parameters), its family, whether it is a
// self-inverse single-qubit gate, and its spelling in every supported target
// language. Entries are defined in CUE (gates.cue, embedded) and compiled
// once at startup through the CUE Go API.
//
// A *Catalog is immutable after Compile returns and safe for concurrent reads.
// Lookup misses are reported as *UnknownGateError, never defaulted.
package catalog
