// Package passes provides the circuit rewrite pipeline.
//
// A Pass is a pure transform from one circuit to a new circuit, plus a flag
// saying whether it invalidates cached statistics. Passes are looked up by
// exact, case-sensitive name in a Registry; a Pipeline resolves every name
// before running anything, so an unknown name never leaves a half-applied
// result.
package passes
