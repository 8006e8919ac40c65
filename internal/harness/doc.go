// Package harness provides conformance testing for circuit optimization and
// lowering.
//
// A scenario names an input circuit, the passes to run on it, and the
// targets to lower the result to. The harness builds the circuit, runs the
// pipeline, records the run in an isolated store, lowers the result, and
// checks the outcome against the scenario's expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	catalog: extra_gates.cue        # optional, relative to this file
//	circuit:
//	  num_qubits: 2
//	  gates:
//	    - {name: h, targets: [0], controls: [], parameters: []}
//	    - {name: rx, targets: [1], controls: [0], parameters: ["theta/2"]}
//	passes: [remove_self_inverse_pairs]
//	targets: [assembly, script]
//	expect:
//	  gates: [rx]
//	  gate_counts: {rx: 1}
//	  depth: 1
//
// A scenario that should fail replaces the result fields with an error
// clause:
//
//	expect:
//	  error: {kind: unknown_pass, contains: "fuse_rotations"}
//
// # Error Kinds
//
//   - malformed: the circuit violates a structural invariant
//   - unknown_gate: a gate name is not in the catalog
//   - unknown_pass: a pass name is not registered
//   - unsupported: a target cannot express a construct
//   - stale_stats: cached gate_counts or depth disagree with the gates
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory SQLite store with
// sequential run IDs and a logical clock starting at 1, so recorded runs
// and golden snapshots are identical across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/bell.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
