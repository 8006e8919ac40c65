// Package stats derives gate histograms and depth from circuits.
//
// Depth uses greedy per-qubit list scheduling: each gate goes to the first
// time step after every qubit it touches is free, ties resolved in gate
// order. Schedule exposes the per-gate steps so diagram layouts agree with
// Compute.
package stats

import (
	"fmt"

	"github.com/roach88/qcanvas/internal/ir"
)

// Schedule returns the time step assigned to each gate, in gate order.
func Schedule(c *ir.Circuit) []int {
	free := make([]int, c.NumQubits())
	steps := make([]int, c.Len())
	for i := range c.Len() {
		qubits := c.Gate(i).Qubits()
		t := 0
		for _, q := range qubits {
			t = max(t, free[q])
		}
		steps[i] = t
		for _, q := range qubits {
			free[q] = t + 1
		}
	}
	return steps
}

// Layers groups gate indices by time step.
func Layers(c *ir.Circuit) [][]int {
	steps := Schedule(c)
	var layers [][]int
	for i, t := range steps {
		for len(layers) <= t {
			layers = append(layers, nil)
		}
		layers[t] = append(layers[t], i)
	}
	return layers
}

// Depth returns 1 + the latest time step, or 0 for an empty circuit.
func Depth(c *ir.Circuit) int {
	depth := 0
	for _, t := range Schedule(c) {
		depth = max(depth, t+1)
	}
	return depth
}

// GateCounts tallies gates by canonical name.
func GateCounts(c *ir.Circuit) map[string]int {
	counts := make(map[string]int)
	for i := range c.Len() {
		counts[c.Gate(i).Name()]++
	}
	return counts
}

// Compute returns the histogram and depth of c. It never fails for a
// constructed circuit.
func Compute(c *ir.Circuit) ir.Stats {
	return ir.Stats{GateCounts: GateCounts(c), Depth: Depth(c)}
}

// Attach returns a copy of c carrying freshly computed statistics.
func Attach(c *ir.Circuit) *ir.Circuit {
	return c.WithStats(Compute(c))
}

// StaleError reports cached statistics that disagree with the gate list.
type StaleError struct {
	Cached   ir.Stats
	Computed ir.Stats
}

func (e *StaleError) Error() string {
	if e.Cached.Depth != e.Computed.Depth {
		return fmt.Sprintf("stale statistics: cached depth %d, computed %d", e.Cached.Depth, e.Computed.Depth)
	}
	return fmt.Sprintf("stale statistics: cached gate_counts %v, computed %v", e.Cached.GateCounts, e.Computed.GateCounts)
}

// Verify checks cached statistics against recomputation. A circuit without
// cached statistics always verifies.
func Verify(c *ir.Circuit) error {
	cached, ok := c.Stats()
	if !ok {
		return nil
	}
	computed := Compute(c)
	if !cached.Equal(computed) {
		return &StaleError{Cached: cached, Computed: computed}
	}
	return nil
}
