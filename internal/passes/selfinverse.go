package passes

import (
	"github.com/roach88/qcanvas/internal/catalog"
	"github.com/roach88/qcanvas/internal/ir"
)

// Built-in pass names.
const (
	RemoveSelfInversePairs = "remove_self_inverse_pairs"
	RemoveIdentityGates    = "remove_identity_gates"
)

// removeSelfInversePairs cancels pairs of identical self-inverse gates that
// are adjacent on their qubit's timeline.
//
// One left-to-right scan keeps, per qubit, the index of the last unmatched
// cancellation candidate. A candidate matching the pending one removes both;
// any other gate touching the qubit clears it. Pairs never overlap, so a run
// of k identical gates leaves k mod 2.
func removeSelfInversePairs(c *ir.Circuit) (*ir.Circuit, error) {
	cat := c.Catalog()
	removed := make([]bool, c.Len())
	pending := make(map[int]int)

	for i := range c.Len() {
		g := c.Gate(i)
		if cancellable(cat, g) {
			q := g.Targets()[0]
			if j, ok := pending[q]; ok && c.Gate(j).Name() == g.Name() {
				removed[j], removed[i] = true, true
				delete(pending, q)
				continue
			}
			pending[q] = i
			continue
		}
		for q := range pending {
			if g.Touches(q) {
				delete(pending, q)
			}
		}
	}

	return c.WithGates(keep(c, removed))
}

// cancellable: one target, no controls, catalog-marked self-inverse.
// Parameters are never inspected.
func cancellable(cat *catalog.Catalog, g ir.Gate) bool {
	if g.NumTargets() != 1 || g.NumControls() != 0 {
		return false
	}
	d, err := cat.Lookup(g.Name())
	if err != nil {
		return false
	}
	return d.IsSelfInverseSingleQubit()
}

func removeIdentityGates(c *ir.Circuit) (*ir.Circuit, error) {
	cat := c.Catalog()
	removed := make([]bool, c.Len())
	for i := range c.Len() {
		d, err := cat.Lookup(c.Gate(i).Name())
		if err != nil {
			return nil, catalog.UnknownGateAt(c.Gate(i).Name(), i)
		}
		removed[i] = d.Family == catalog.FamilyIdentity
	}
	return c.WithGates(keep(c, removed))
}

func keep(c *ir.Circuit, removed []bool) []ir.Gate {
	out := make([]ir.Gate, 0, c.Len())
	for i := range c.Len() {
		if !removed[i] {
			out = append(out, c.Gate(i))
		}
	}
	return out
}
