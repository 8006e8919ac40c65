package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/testutil"
)

// createTestStore creates a new store in a temp dir with deterministic IDs
// and seq numbers.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDs("")),
		WithClock(&testutil.LogicalClock{}),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestCircuit builds H on every qubit followed by a CX chain.
func createTestCircuit(t *testing.T, numQubits int) *ir.Circuit {
	t.Helper()
	var gates []ir.Gate
	for q := range numQubits {
		gates = append(gates, testutil.H(q))
	}
	for q := 0; q+1 < numQubits; q++ {
		gates = append(gates, testutil.CX(q, q+1))
	}
	return testutil.Circuit(t, numQubits, gates...)
}
