package cli

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qcanvas/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
	Golden string // golden directory; defaults to <scenarios-dir>/golden
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run YAML conformance scenarios through the optimize and lower pipeline.

Each scenario's expectations are checked. When a golden directory holds
files for a scenario ({name}.golden, {name}.{target}.golden) the outcome
and lowered programs are compared byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  qcanvas test ./scenarios
  qcanvas test ./scenarios --filter "controlled_*"
  qcanvas test ./scenarios --update
  qcanvas test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden file directory (default <scenarios-dir>/golden)")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	// Validate directory
	if info, err := os.Stat(scenariosDir); err != nil || !info.IsDir() {
		return formatter.FailWithCode(ErrCodeNotFound, ExitCommandError,
			fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
	}
	if opts.Golden == "" {
		opts.Golden = filepath.Join(scenariosDir, "golden")
	}

	// Find scenario files
	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return formatter.FailWithCode(ErrCodeGeneric, ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}
	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts, formatter)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// findScenarioFiles lists scenario files, keeping those whose base name
// (without extension) matches filter.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	paths, err := harness.ScenarioPaths(dir)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return paths, nil
	}

	var files []string
	for _, path := range paths {
		base := filepath.Base(path)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		matched, err := filepath.Match(filter, name)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		if matched {
			files = append(files, path)
		}
	}
	return files, nil
}

// runScenario executes a single scenario and returns the result.
func runScenario(scenarioFile string, opts *TestOptions, formatter *OutputFormatter) ScenarioResult {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return reportScenario(formatter, ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		})
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return reportScenario(formatter, ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		})
	}
	if !result.Pass {
		return reportScenario(formatter, ScenarioResult{Name: scenario.Name, Errors: result.Errors})
	}

	files, err := harness.GoldenFiles(scenario.Name, result)
	if err != nil {
		return reportScenario(formatter, ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("failed to build golden output: %v", err)},
		})
	}

	if opts.Update {
		if err := updateGoldenFiles(opts.Golden, files); err != nil {
			return reportScenario(formatter, ScenarioResult{
				Name:   scenario.Name,
				Errors: []string{fmt.Sprintf("failed to update golden files: %v", err)},
			})
		}
		formatter.VerboseLog("Updated %d golden file(s) for %s", len(files), scenario.Name)
		return reportScenario(formatter, ScenarioResult{Name: scenario.Name, Pass: true})
	}

	if mismatches := compareWithGolden(opts.Golden, files); len(mismatches) > 0 {
		return reportScenario(formatter, ScenarioResult{Name: scenario.Name, Errors: mismatches})
	}
	return reportScenario(formatter, ScenarioResult{Name: scenario.Name, Pass: true})
}

// reportScenario prints one scenario line in text mode and returns r.
func reportScenario(formatter *OutputFormatter, r ScenarioResult) ScenarioResult {
	if formatter.Format == "json" {
		return r
	}
	if r.Pass {
		fmt.Fprintf(formatter.Writer, "\u2713 %s\n", r.Name)
		return r
	}
	fmt.Fprintf(formatter.Writer, "\u2717 %s\n", r.Name)
	for _, e := range r.Errors {
		fmt.Fprintf(formatter.Writer, "  %s\n", e)
	}
	return r
}

func goldenFilePath(dir, name string) string {
	return filepath.Join(dir, name+".golden")
}

// updateGoldenFiles writes every golden file, creating dir if needed.
func updateGoldenFiles(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	for name, data := range files {
		if err := os.WriteFile(goldenFilePath(dir, name), data, 0644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
	}
	return nil
}

// compareWithGolden compares each file with its golden counterpart. Files
// without a golden counterpart are not compared.
func compareWithGolden(dir string, files map[string][]byte) []string {
	var mismatches []string
	for _, name := range slices.Sorted(maps.Keys(files)) {
		golden, err := os.ReadFile(goldenFilePath(dir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			mismatches = append(mismatches, fmt.Sprintf("failed to read golden file: %v", err))
			continue
		}
		if !bytes.Equal(golden, files[name]) {
			mismatches = append(mismatches,
				fmt.Sprintf("%s.golden mismatch (run with --update to regenerate)", name))
		}
	}
	return mismatches
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := formatter.encodeJSON(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d scenario(s) failed", result.Failed), reported: true}
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d scenario(s) failed", result.Failed), reported: true}
	}

	fmt.Fprintln(w, "\u2713 All scenarios passed")
	return nil
}
