package passes

import (
	"fmt"
	"log/slog"

	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/stats"
)

// Pipeline is an ordered, fully resolved list of passes.
type Pipeline struct {
	passes []Pass
}

// NewPipeline resolves names against reg. Any unknown name fails with
// *UnknownPassError before a pipeline exists.
func NewPipeline(reg *Registry, names []string) (*Pipeline, error) {
	p := &Pipeline{passes: make([]Pass, 0, len(names))}
	for _, name := range names {
		pass, err := reg.Lookup(name)
		if err != nil {
			return nil, err
		}
		p.passes = append(p.passes, pass)
	}
	return p, nil
}

// Names returns the pass names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.passes))
	for i, pass := range p.passes {
		names[i] = pass.Name
	}
	return names
}

// InvalidatesStats reports whether any pass in the pipeline invalidates
// cached statistics.
func (p *Pipeline) InvalidatesStats() bool {
	for _, pass := range p.passes {
		if pass.InvalidatesStats {
			return true
		}
	}
	return false
}

// Apply runs every pass in order, each on the previous pass's output.
//
// If any pass invalidates statistics, the result carries freshly computed
// statistics. Otherwise the input's cached statistics, if any, are carried
// forward unchanged. The input circuit is never modified; on error no
// circuit is returned.
func (p *Pipeline) Apply(c *ir.Circuit) (*ir.Circuit, error) {
	out := c
	for _, pass := range p.passes {
		before := out.Len()
		next, err := pass.Transform(out)
		if err != nil {
			return nil, fmt.Errorf("pass %s: %w", pass.Name, err)
		}
		slog.Debug("applied pass",
			"pass", pass.Name,
			"gates_before", before,
			"gates_after", next.Len())
		out = next
	}

	if p.InvalidatesStats() {
		out = stats.Attach(out)
		s, _ := out.Stats()
		slog.Debug("recomputed statistics", "depth", s.Depth, "gates", out.Len())
		return out, nil
	}
	if cached, ok := c.Stats(); ok {
		return out.WithStats(cached), nil
	}
	return out, nil
}

// Apply resolves names against reg and runs them on c.
func Apply(reg *Registry, c *ir.Circuit, names []string) (*ir.Circuit, error) {
	p, err := NewPipeline(reg, names)
	if err != nil {
		return nil, err
	}
	return p.Apply(c)
}
