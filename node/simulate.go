package node

import (
	"context"

	"gosai/board"
	"gosai/network"
)

// EvalDeps bundles the per-search dependencies PlaySimulation needs at
// every recursion level: the network client, expansion parameters, the
// shared node counter, and the PUCT selection config. Search constructs
// one of these per think() call and passes it down unchanged.
type EvalDeps struct {
	Client      network.Client
	MinPSARatio float64
	Lambda, Mu  float64
	NodeCount   *NodeCounter
	MaxTreeSize int64
	Selection   SelectionConfig
}

// PlaySimulation implements spec.md §4.7: descend from n via PUCT
// selection, expand at the first unexpanded node reached, and back the
// resulting value up to n. isRoot must be true only for the call rooted at
// the search tree's actual root (it disables the FPU-reduction term when
// Dirichlet noise is active there, per spec.md §4.6).
//
// The returned SearchResult is Invalid when this simulation produced no
// backup-able value (superko hit during descent, an expansion race, or
// tree-size saturation) — spec.md §7's "not an error" cases. A non-nil
// error is returned only when the network client itself fails, which
// spec.md §7 treats as fatal: the caller should abort the whole think()
// call rather than retry.
func PlaySimulation(ctx context.Context, pos *board.Position, n *Node, isRoot bool, deps EvalDeps) (SearchResult, error) {
	n.AddVirtualLoss()
	defer n.RemoveVirtualLoss()

	result := Invalid

	// n.Expandable(0) is spec.md §4.7 step 2's "node is expandable": true
	// both when n has never been expanded (MinPSARatioChildren starts above
	// 1.0) and when a prior expansion pruned low-prior candidates under a
	// coarser ratio (MinPSARatioChildren in (0,1]), since CreateChildren can
	// still grow such a node's children at ratio 0. False only once a node
	// is expanded with nothing pruned (MinPSARatioChildren == 0).
	if n.Expandable(0) {
		switch {
		case pos.Passes() >= 2:
			result = FromScore(pos.FinalScore())
		case deps.NodeCount.Load() < deps.MaxTreeSize:
			created, value, alpkt, beta, err := CreateChildren(ctx, n, pos, deps.Client, deps.MinPSARatio, deps.Lambda, deps.Mu, deps.NodeCount)
			if err != nil {
				return Invalid, err
			}
			if created {
				result = FromEval(value, alpkt, beta)
			}
		}
	}

	if n.HasChildren() && !result.Valid() {
		next := n.SelectChild(pos.ToMove(), isRoot, deps.Selection)
		if next == nil {
			return Invalid, nil
		}

		move := next.Move()
		if !pos.PlayMove(move) {
			// Either stale (superko now violated, spec.md §7 "Illegal
			// descent") or the position changed under us; either way this
			// child cannot be descended into right now.
			next.SetStatus(StatusInvalid)
			return Invalid, nil
		}

		child := next.Inflate()
		childResult, err := PlaySimulation(ctx, pos, child, false, deps)
		if err != nil {
			return Invalid, err
		}
		if !childResult.Valid() {
			return Invalid, nil
		}
		result = childResult
	}

	if result.Valid() {
		n.Update(result.EvalWithBonus(n.EvalBonus))
	}
	return result, nil
}
