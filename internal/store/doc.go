// Package store provides SQLite-backed storage for circuits and
// optimization runs.
//
// Circuits are content-addressed by their fingerprint (see ir.Circuit.Fingerprint),
// so saving the same circuit twice is a no-op. A run links an input circuit
// to the circuit a pass pipeline produced from it, with the pass names in
// order and before/after gate counts and depths.
//
// # Ordering
//
// Rows carry a seq INTEGER from a logical clock, never a timestamp. Every
// listing query orders by seq ASC, id ASC COLLATE BINARY, so output is
// identical across runs given the same clock and ID generator.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
