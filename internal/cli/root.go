package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/qcanvas/internal/catalog"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Catalog string // extra CUE gate definitions

	cat *catalog.Catalog
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the qcanvas CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "qcanvas",
		Short: "qcanvas - quantum circuit optimizer and code generator",
		Long: `Optimize quantum circuits and lower them to OpenQASM or PennyLane.

Circuits are read from JSON, YAML, or OpenQASM files. Gates are resolved
against a catalog defined in CUE; --catalog adds definitions to it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "CUE file with extra gate definitions")

	// Add subcommands
	cmd.AddCommand(NewOptimizeCommand(opts))
	cmd.AddCommand(NewLowerCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewGatesCommand(opts))
	cmd.AddCommand(NewPassesCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// setupLogging installs a text handler on w at Info, or Debug when verbose.
func setupLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// gateCatalog returns the built-in catalog, extended by --catalog when set.
// The result is cached for the life of the command.
func (o *RootOptions) gateCatalog() (*catalog.Catalog, error) {
	if o.cat != nil {
		return o.cat, nil
	}
	if o.Catalog == "" {
		o.cat = catalog.Default()
		return o.cat, nil
	}
	cat, err := catalog.LoadFile(o.Catalog)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded catalog", "path", o.Catalog, "gates", cat.Len())
	o.cat = cat
	return cat, nil
}

// newFormatter builds the formatter every command writes through.
func (o *RootOptions) newFormatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// loadCatalog is gateCatalog with the failure written through f.
func (o *RootOptions) loadCatalog(f *OutputFormatter) (*catalog.Catalog, error) {
	cat, err := o.gateCatalog()
	if err != nil {
		return nil, f.FailWithCode(ErrCodeCatalog, ExitCommandError, "failed to load catalog", err)
	}
	return cat, nil
}
