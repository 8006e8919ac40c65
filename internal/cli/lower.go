package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/lower"
)

// LowerOptions holds flags for the lower command.
type LowerOptions struct {
	*RootOptions
	Target string
	Output string // output file path
}

// LowerResult is the JSON payload of the lower command.
type LowerResult struct {
	Target  string `json:"target"`
	Program string `json:"program"`
}

// NewLowerCommand creates the lower command.
func NewLowerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LowerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lower <circuit-file>",
		Short: "Render a circuit as an OpenQASM or PennyLane program",
		Long: `Render a circuit as a complete program for a target language.

Targets:
  assembly, qasm3, qasm   OpenQASM 3.0
  qasm2                   OpenQASM 2.0 (qelib1.inc)
  script, pennylane       PennyLane Python script

Exit codes:
  0 - Program written
  1 - The target cannot express the circuit
  2 - Command error (unreadable input, unknown target, etc.)

Examples:
  qcanvas lower bell.json -t assembly
  qcanvas lower circuit.yaml -t script -o circuit.py`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLower(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "assembly", "target language")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runLower(opts *LowerOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	target, err := catalog.ParseTarget(opts.Target)
	if err != nil {
		return formatter.Fail("invalid target", err)
	}

	c, err := loadInput(formatter, opts.RootOptions, path)
	if err != nil {
		return err
	}

	program, err := lower.Lower(c, target)
	if err != nil {
		return formatter.Fail("lowering failed", err)
	}
	formatter.VerboseLog("Lowered %d gate(s) to %s", c.Len(), target)

	if opts.Format == "json" && opts.Output == "" {
		return formatter.Success(LowerResult{Target: target.String(), Program: program})
	}
	return writeOutput(formatter, opts.Output, []byte(program))
}
