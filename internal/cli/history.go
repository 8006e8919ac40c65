package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/qcanvas/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// RunInfo is one recorded run as listed by the history command.
type RunInfo struct {
	Seq         int64    `json:"seq"`
	ID          string   `json:"id"`
	InputID     string   `json:"input_id"`
	OutputID    string   `json:"output_id"`
	Passes      []string `json:"passes"`
	GatesBefore int      `json:"gates_before"`
	GatesAfter  int      `json:"gates_after"`
	DepthBefore int      `json:"depth_before"`
	DepthAfter  int      `json:"depth_after"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [circuit-id]",
		Short: "List recorded optimization runs",
		Long: `List the runs recorded by "qcanvas optimize --db".

With a circuit id (a fingerprint printed by "qcanvas validate -v") only
runs that consumed or produced that circuit are listed.

Examples:
  qcanvas history --db ./qcanvas.db
  qcanvas history --db ./qcanvas.db 3f2a... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			circuitID := ""
			if len(args) == 1 {
				circuitID = args[0]
			}
			return runHistory(opts, circuitID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite history database")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, circuitID string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	// Opening would create an empty database.
	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.FailWithCode(ErrCodeNotFound, ExitCommandError,
			fmt.Sprintf("database not found: %s", opts.Database), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.FailWithCode(ErrCodeStore, ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var runs []store.Run
	if circuitID == "" {
		runs, err = st.ListRuns(ctx)
	} else {
		runs, err = st.RunsForCircuit(ctx, circuitID)
	}
	if err != nil {
		return formatter.FailWithCode(ErrCodeStore, ExitCommandError, "failed to read runs", err)
	}

	infos := make([]RunInfo, len(runs))
	for i, r := range runs {
		infos[i] = RunInfo{
			Seq:         r.Seq,
			ID:          r.ID,
			InputID:     r.InputID,
			OutputID:    r.OutputID,
			Passes:      r.Passes,
			GatesBefore: r.GatesBefore,
			GatesAfter:  r.GatesAfter,
			DepthBefore: r.DepthBefore,
			DepthAfter:  r.DepthAfter,
		}
	}

	if opts.Format == "json" {
		return formatter.Success(infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tPASSES\tGATES\tDEPTH")
	for _, r := range infos {
		passList := strings.Join(r.Passes, ",")
		if passList == "" {
			passList = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\u2192%d\t%d\u2192%d\n",
			r.Seq, r.ID, passList, r.GatesBefore, r.GatesAfter, r.DepthBefore, r.DepthAfter)
	}
	return tw.Flush()
}
