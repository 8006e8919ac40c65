package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qcanvas/internal/stats"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool   `json:"valid"`
	NumQubits   int    `json:"num_qubits"`
	Gates       int    `json:"gates"`
	Fingerprint string `json:"fingerprint"`
	CachedStats bool   `json:"cached_stats"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <circuit-file>",
		Short: "Check a circuit without transforming it",
		Long: `Check that a circuit file decodes, every gate is in the catalog with the
right arity, qubit indices are in range, and any cached gate_counts and
depth match the gates.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	c, err := loadInput(formatter, opts, path)
	if err != nil {
		return err
	}
	if err := stats.Verify(c); err != nil {
		return formatter.Fail("input statistics are stale", err)
	}

	fingerprint, err := c.Fingerprint()
	if err != nil {
		return formatter.Fail("failed to fingerprint circuit", err)
	}
	_, cached := c.Stats()

	result := ValidationResult{
		Valid:       true,
		NumQubits:   c.NumQubits(),
		Gates:       c.Len(),
		Fingerprint: fingerprint,
		CachedStats: cached,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "\u2713 Valid circuit: %d qubit(s), %d gate(s)\n", result.NumQubits, result.Gates)
	formatter.VerboseLog("Fingerprint: %s", fingerprint)
	return nil
}
