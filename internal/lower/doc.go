// Package lower renders circuits as complete programs in a target language.
//
// Supported targets (see catalog.Target):
//   - qasm3, the "assembly" target: OpenQASM 3.0 with stdgates.inc
//   - qasm2: OpenQASM 2.0 with qelib1.inc
//   - pennylane, the "script" target: a PennyLane QNode script
//
// Rendering is all-or-nothing. Any gate the catalog does not know, or that
// the target cannot express, fails the whole render and no text is returned.
package lower
