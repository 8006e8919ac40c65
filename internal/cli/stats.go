package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/stats"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Layers bool
}

// StatsResult is the payload of the stats command.
type StatsResult struct {
	NumQubits  int            `json:"num_qubits"`
	Gates      int            `json:"gates"`
	Depth      int            `json:"depth"`
	GateCounts map[string]int `json:"gate_counts"`
	Layers     [][]int        `json:"layers,omitempty"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats <circuit-file>",
		Short: "Show gate counts and depth",
		Long: `Compute the gate histogram and depth of a circuit.

Depth uses greedy per-qubit scheduling. With --layers the gate indices of
each time step are listed as well. Cached statistics in the input are
checked against the computed values.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Layers, "layers", false, "list gate indices per time step")

	return cmd
}

func runStats(opts *StatsOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	c, err := loadInput(formatter, opts.RootOptions, path)
	if err != nil {
		return err
	}
	if err := stats.Verify(c); err != nil {
		return formatter.Fail("input statistics are stale", err)
	}

	s := stats.Compute(c)
	result := StatsResult{
		NumQubits:  c.NumQubits(),
		Gates:      c.Len(),
		Depth:      s.Depth,
		GateCounts: s.GateCounts,
	}
	if opts.Layers {
		result.Layers = stats.Layers(c)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprint(formatter.Writer, formatStats(c, result))
	return nil
}

func formatStats(c *ir.Circuit, r StatsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "qubits: %d\n", r.NumQubits)
	fmt.Fprintf(&b, "gates:  %d\n", r.Gates)
	fmt.Fprintf(&b, "depth:  %d\n", r.Depth)
	for _, name := range slices.Sorted(maps.Keys(r.GateCounts)) {
		fmt.Fprintf(&b, "  %-8s %d\n", name, r.GateCounts[name])
	}
	for step, layer := range r.Layers {
		names := make([]string, len(layer))
		for i, idx := range layer {
			names[i] = fmt.Sprintf("%d:%s", idx, c.Gate(idx).Name())
		}
		fmt.Fprintf(&b, "step %d: %s\n", step, strings.Join(names, " "))
	}
	return b.String()
}
