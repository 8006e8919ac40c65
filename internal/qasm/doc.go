// Package qasm reads the OpenQASM 2.0 and 3.0 subset that package lower
// writes: one quantum register, gate calls with optional ctrl/inv
// modifiers, and (3.0 only) float inputs for free parameters.
//
// Gate names are mapped back to catalog entries through each entry's
// spelling for the source version, so "inv @ sx" reads as sxdg and
// "u1" as p. Comment lines before the register declaration become the
// circuit metadata ("// name: ..." sets the name, the rest form the
// description).
//
// Classical registers are accepted and ignored. Measurement, reset,
// barriers and gate definitions are rejected.
package qasm
