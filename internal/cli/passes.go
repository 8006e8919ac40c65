package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/qcanvas/internal/passes"
)

// PassInfo is one registered pass as listed by the passes command.
type PassInfo struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	InvalidatesStats bool   `json:"invalidates_stats"`
}

// NewPassesCommand creates the passes command.
func NewPassesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "passes",
		Short:         "List the optimization passes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasses(rootOpts, cmd)
		},
	}

	return cmd
}

func runPasses(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	registered := passes.DefaultRegistry().Passes()
	infos := make([]PassInfo, len(registered))
	for i, p := range registered {
		infos[i] = PassInfo{Name: p.Name, Description: p.Description, InvalidatesStats: p.InvalidatesStats}
	}

	if opts.Format == "json" {
		return formatter.Success(infos)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tINVALIDATES STATS\tDESCRIPTION")
	for _, p := range infos {
		fmt.Fprintf(tw, "%s\t%t\t%s\n", p.Name, p.InvalidatesStats, p.Description)
	}
	return tw.Flush()
}
