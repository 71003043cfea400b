package node

import (
	"math"

	"gosai/board"
)

// SelectionConfig holds the PUCT knobs from spec.md §6 that SelectChild
// needs; Search owns the full Config and passes this subset down so node
// stays free of a dependency on the config package.
type SelectionConfig struct {
	CPuct        float64
	FPUReduction float64
	FPUZero      bool
	Noise        bool // Dirichlet noise enabled at the root
}

// SelectChild implements PUCT selection (spec.md §4.6): picks the ACTIVE
// child maximizing q_i+u_i, inflates it if still deflated, and returns it.
// color is the side to move at n. isRoot disables the FPU reduction when
// Dirichlet noise is in play, per spec.md's root-noise carve-out.
func (n *Node) SelectChild(color board.Color, isRoot bool, cfg SelectionConfig) *NodePointer {
	n.Mu.Lock()
	defer n.Mu.Unlock()

	var parentVisits float64
	var totalVisitedPolicy float64
	for i := range n.Children {
		c := &n.Children[i]
		if !c.Valid() {
			continue
		}
		v := float64(c.Visits())
		parentVisits += v
		if v > 0 {
			totalVisitedPolicy += c.Prior()
		}
	}

	fpuReduction := 0.0
	if !isRoot || !cfg.Noise {
		fpuReduction = cfg.FPUReduction * math.Sqrt(totalVisitedPolicy)
	}
	fpu := 0.5
	if !cfg.FPUZero && !(isRoot && cfg.Noise) {
		fpu = n.AgentEvalFor(color) - fpuReduction
	}

	sqrtParent := math.Sqrt(parentVisits)

	var best *NodePointer
	bestValue := math.Inf(-1)
	for i := range n.Children {
		c := &n.Children[i]
		if !c.Active() {
			continue
		}

		q := fpu
		if c.Visits() > 0 {
			if inflated := c.Get(); inflated != nil {
				q = inflated.EvalFrom(color)
			}
		}
		denom := 1.0 + float64(c.Visits())
		u := cfg.CPuct * c.Prior() * (sqrtParent / denom)
		score := q + u

		if score > bestValue {
			bestValue = score
			best = c
		}
	}

	if best == nil {
		return nil
	}
	best.Inflate()
	return best
}
