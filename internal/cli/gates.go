package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/qcanvas/internal/catalog"
)

// GateInfo is one catalog entry as listed by the gates command.
type GateInfo struct {
	Name         string            `json:"name"`
	Family       string            `json:"family"`
	Targets      int               `json:"targets"`
	Controls     int               `json:"controls"`
	Controllable bool              `json:"controllable"`
	Params       int               `json:"params"`
	SelfInverse  bool              `json:"self_inverse"`
	Aliases      []string          `json:"aliases,omitempty"`
	Spellings    map[string]string `json:"spellings"`

	// A native controlled form names its base gate and the controls it adds.
	ControlledOf  string `json:"controlled_of,omitempty"`
	ExtraControls int    `json:"extra_controls,omitempty"`
}

// NewGatesCommand creates the gates command.
func NewGatesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gates",
		Short: "List the gate catalog",
		Long: `List every gate in the catalog (including --catalog extensions) with its
arity, family, and spelling in each target language.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGates(rootOpts, cmd)
		},
	}

	return cmd
}

func runGates(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	cat, err := opts.loadCatalog(formatter)
	if err != nil {
		return err
	}

	infos := make([]GateInfo, 0, cat.Len())
	for _, name := range cat.Names() {
		d, err := cat.Lookup(name)
		if err != nil {
			return formatter.Fail("catalog lookup failed", err)
		}
		infos = append(infos, gateInfo(cat, d))
	}

	if opts.Format == "json" {
		return formatter.Success(infos)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFAMILY\tTARGETS\tCONTROLS\tPARAMS\tQASM3\tQASM2\tPENNYLANE")
	for _, g := range infos {
		controls := fmt.Sprint(g.Controls)
		if g.Controllable {
			controls += "+"
		}
		name := g.Name
		if g.SelfInverse {
			name += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\t%s\t%s\n",
			name, g.Family, g.Targets, controls, g.Params,
			g.Spellings["qasm3"], g.Spellings["qasm2"], g.Spellings["pennylane"])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(formatter.Writer, "\n* self-inverse   + accepts extra controls")
	return nil
}

func gateInfo(cat *catalog.Catalog, d catalog.Descriptor) GateInfo {
	info := GateInfo{
		Name:         d.Name,
		Family:       d.Family.String(),
		Targets:      d.Targets,
		Controls:     d.Controls,
		Controllable: d.Controllable,
		Params:       d.Params,
		SelfInverse:  d.IsSelfInverseSingleQubit(),
		Aliases:      d.Aliases(),
		Spellings:    make(map[string]string, len(catalog.Targets)),
	}
	if base, extra := cat.Decompose(d.Name); extra > 0 {
		info.ControlledOf, info.ExtraControls = base, extra
	}
	for _, t := range catalog.Targets {
		if sp, ok := d.Spelling(t); ok {
			info.Spellings[t.String()] = formatSpelling(sp)
		}
	}
	return info
}

func formatSpelling(sp catalog.Spelling) string {
	if sp.Adjoint {
		return "adjoint(" + sp.Name + ")"
	}
	return sp.Name
}
