package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/passes"
	"github.com/roach88/qcanvas/internal/stats"
	"github.com/roach88/qcanvas/internal/store"
)

// OptimizeOptions holds flags for the optimize command.
type OptimizeOptions struct {
	*RootOptions
	Passes   []string
	Output   string // output file path
	Database string // optional run history

	// IDGenerator and Clock override the store defaults (for testing).
	IDGenerator store.IDGenerator
	Clock       store.Clock
}

// OptimizeResult summarizes one optimization.
type OptimizeResult struct {
	Passes      []string  `json:"passes"`
	GatesBefore int       `json:"gates_before"`
	GatesAfter  int       `json:"gates_after"`
	DepthBefore int       `json:"depth_before"`
	DepthAfter  int       `json:"depth_after"`
	RunID       string    `json:"run_id,omitempty"`
	Circuit     ir.Record `json:"circuit"`
}

// NewOptimizeCommand creates the optimize command.
func NewOptimizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OptimizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "optimize <circuit-file>",
		Short: "Apply optimization passes to a circuit",
		Long: `Apply optimization passes to a circuit, in the order given.

The optimized circuit is written as a record with recomputed gate_counts
and depth. Without --output it goes to stdout as JSON; with --output the
encoding follows the file extension (.json, .yaml, .yml).

With --db the input, output and pass list are recorded in a SQLite
history database (see "qcanvas history").

Examples:
  qcanvas optimize bell.json -p remove_self_inverse_pairs
  qcanvas optimize circuit.qasm -p remove_identity_gates -p remove_self_inverse_pairs -o out.yaml
  qcanvas optimize circuit.yaml -p remove_self_inverse_pairs --db ./qcanvas.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Passes, "pass", "p", nil, "pass to apply (repeatable, applied in order)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runOptimize(opts *OptimizeOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	format := FormatJSON
	if opts.Output != "" {
		var err error
		if format, err = formatForPath(opts.Output); err != nil || format == FormatQASM {
			return formatter.FailWithCode(ErrCodeFormat, ExitCommandError, "invalid output file",
				fmt.Errorf("optimize writes .json, .yaml or .yml files; use \"qcanvas lower\" for OpenQASM"))
		}
	}

	input, err := loadInput(formatter, opts.RootOptions, path)
	if err != nil {
		return err
	}
	if err := stats.Verify(input); err != nil {
		return formatter.Fail("input statistics are stale", err)
	}

	pipeline, err := passes.NewPipeline(passes.DefaultRegistry(), opts.Passes)
	if err != nil {
		return formatter.Fail("invalid pass list", err)
	}
	output, err := pipeline.Apply(input)
	if err != nil {
		return formatter.Fail("optimization failed", err)
	}
	// Always hand out fresh statistics, whatever the passes declared.
	output = stats.Attach(output)
	after, _ := output.Stats()

	result := OptimizeResult{
		Passes:      pipeline.Names(),
		GatesBefore: input.Len(),
		GatesAfter:  output.Len(),
		DepthBefore: stats.Depth(input),
		DepthAfter:  after.Depth,
		Circuit:     output.Record(),
	}

	if opts.Database != "" {
		runID, err := recordRun(cmd, opts, input, output, result.Passes)
		if err != nil {
			return formatter.FailWithCode(ErrCodeStore, ExitCommandError, "failed to record run", err)
		}
		result.RunID = runID
		formatter.VerboseLog("Recorded run %s in %s", runID, opts.Database)
	}

	if opts.Output != "" {
		data, err := EncodeCircuit(output, format)
		if err != nil {
			return formatter.Fail("failed to encode circuit", err)
		}
		if err := writeOutput(formatter, opts.Output, data); err != nil {
			return err
		}
	}

	switch {
	case opts.Format == "json":
		return formatter.Success(result)
	case opts.Output != "":
		fmt.Fprintln(formatter.Writer, optimizeSummary(result))
		return nil
	}

	data, err := EncodeCircuit(output, FormatJSON)
	if err != nil {
		return formatter.Fail("failed to encode circuit", err)
	}
	return writeOutput(formatter, "", data)
}

func recordRun(cmd *cobra.Command, opts *OptimizeOptions, input, output *ir.Circuit, names []string) (string, error) {
	var storeOpts []store.Option
	if opts.IDGenerator != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDGenerator))
	}
	if opts.Clock != nil {
		storeOpts = append(storeOpts, store.WithClock(opts.Clock))
	}

	st, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		return "", err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	run, err := st.RecordRun(ctx, input, output, names)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

func optimizeSummary(r OptimizeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\u2713 Optimized: %d \u2192 %d gate(s), depth %d \u2192 %d",
		r.GatesBefore, r.GatesAfter, r.DepthBefore, r.DepthAfter)
	if len(r.Passes) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(r.Passes, ", "))
	}
	if r.RunID != "" {
		fmt.Fprintf(&b, " (run %s)", r.RunID)
	}
	return b.String()
}
