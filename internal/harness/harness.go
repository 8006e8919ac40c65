package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/lower"
	"github.com/roach88/qcanvas/internal/passes"
	"github.com/roach88/qcanvas/internal/stats"
	"github.com/roach88/qcanvas/internal/store"
	"github.com/roach88/qcanvas/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios against an isolated store with deterministic run IDs
// and seq numbers.
type Harness struct {
	store    *store.Store
	catalog  *catalog.Catalog
	registry *passes.Registry
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the gate catalog (built-in, or extended by scenario.Catalog)
// 2. Build the input circuit and verify any cached statistics
// 3. Apply the passes and record the run
// 4. Lower the optimized circuit to every listed target
// 5. Evaluate expectations against the outcome
//
// Pipeline failures are reported through the result; the returned error is
// reserved for problems with the harness itself, such as an unloadable
// catalog file.
func Run(scenario *Scenario) (*Result, error) {
	cat := catalog.Default()
	if scenario.Catalog != "" {
		var err error
		cat, err = catalog.LoadFile(scenario.Catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequentialIDs("")),
		store.WithClock(&testutil.LogicalClock{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		catalog:  cat,
		registry: passes.DefaultRegistry(),
	}

	result := NewResult()
	result.Err = h.execute(context.Background(), scenario, result)
	if result.Err != nil {
		slog.Debug("scenario failed", "scenario", scenario.Name, "error", result.Err)
	}

	if err := evaluate(scenario.Expect, result); err != nil {
		result.AddError(err.Error())
	}
	return result, nil
}

// execute drives one scenario through the pipeline, filling in result as
// each stage completes.
func (h *Harness) execute(ctx context.Context, s *Scenario, result *Result) error {
	input, err := ir.FromRecord(s.Circuit, ir.WithCatalog(h.catalog))
	if err != nil {
		return err
	}
	if err := stats.Verify(input); err != nil {
		return err
	}

	output, err := passes.Apply(h.registry, input, s.Passes)
	if err != nil {
		return err
	}
	result.circuit = output
	result.Gates = gateNames(output)
	result.Stats = stats.Compute(output)

	run, err := h.store.RecordRun(ctx, input, output, s.Passes)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	result.Run = run

	for _, selector := range s.Targets {
		t, err := catalog.ParseTarget(selector)
		if err != nil {
			return err
		}
		text, err := lower.Lower(output, t)
		if err != nil {
			return err
		}
		result.Outputs[t.String()] = text
	}
	return nil
}

func gateNames(c *ir.Circuit) []string {
	names := make([]string, c.Len())
	for i := range c.Len() {
		names[i] = c.Gate(i).Name()
	}
	return names
}
