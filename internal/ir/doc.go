// Package ir provides the circuit intermediate representation for qcanvas.
//
// A Circuit is an immutable value: a qubit count, an ordered gate list,
// optional metadata and optional cached statistics. Constructors validate
// qubit ranges and gate arity against a gate catalog; transforms return new
// circuits instead of editing in place.
//
// Key design constraints:
//   - Parameters are a closed union (Numeric, Symbolic)
//   - Gate names are canonical lowercase catalog names after construction
//   - Cached statistics are dropped whenever the gate list changes
//   - All JSON and YAML keys use snake_case
package ir
