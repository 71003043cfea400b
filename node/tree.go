package node

import "gosai/board"

// FindChild returns the child pointer for move, or nil if n has no such
// child. Used by Search's update_root to walk the tree alongside a
// replayed move (spec.md §4.8).
func (n *Node) FindChild(move board.Vertex) *NodePointer {
	n.Mu.Lock()
	defer n.Mu.Unlock()
	for i := range n.Children {
		if n.Children[i].Move() == move {
			return &n.Children[i]
		}
	}
	return nil
}

// DiscardSiblings clears n's children except the one matching keep,
// returning every other already-inflated child for the caller to hand to a
// LazyReaper. n itself is not freed: update_root decides whether n (the
// old root, now superseded) is discarded too.
func (n *Node) DiscardSiblings(keep board.Vertex) []*Node {
	n.Mu.Lock()
	defer n.Mu.Unlock()
	var discarded []*Node
	for i := range n.Children {
		if n.Children[i].Move() == keep {
			continue
		}
		if inflated := n.Children[i].Get(); inflated != nil {
			discarded = append(discarded, inflated)
		}
	}
	n.Children = nil
	return discarded
}

// ReactivateChildren flips every PRUNED child back to ACTIVE (spec.md
// §4.9 step 5, run once per think() call after workers join).
func (n *Node) ReactivateChildren() {
	n.Mu.Lock()
	defer n.Mu.Unlock()
	for i := range n.Children {
		if n.Children[i].Status() == StatusPruned {
			n.Children[i].SetStatus(StatusActive)
		}
	}
}

// InjectNoise overwrites each active child's prior with a Dirichlet-style
// blend (1-eps)*prior + eps*noise[i], matching spec.md §4.9 step 1's root
// noise injection. noise must have the same length and order as n.Children
// (the caller draws it, e.g. from a Gamma-distributed source).
func (n *Node) InjectNoise(noise []float64, eps float64) {
	n.Mu.Lock()
	defer n.Mu.Unlock()
	for i := range n.Children {
		if i >= len(noise) {
			break
		}
		blended := (1-eps)*n.Children[i].Prior() + eps*noise[i]
		n.Children[i].SetPrior(blended)
	}
}

// Walk calls f once for every child pointer, under n's lock. f must not
// call back into n (e.g. via SelectChild or another Walk) or it will
// deadlock; it may freely call methods on the pointers it's handed.
func (n *Node) Walk(f func(*NodePointer)) {
	n.Mu.Lock()
	defer n.Mu.Unlock()
	for i := range n.Children {
		f(&n.Children[i])
	}
}

// NumChildren reports the current child count under lock, for tests and
// stats that need a stable snapshot length.
func (n *Node) NumChildren() int {
	n.Mu.Lock()
	defer n.Mu.Unlock()
	return len(n.Children)
}

// PruneNonContenders implements spec.md §4.9's prune_noncontenders: a
// child is a contender iff visits+estPlayoutsLeft >= the max visits of any
// sibling. Non-contenders are marked PRUNED, still counted for statistics
// but skipped by SelectChild's Active() filter; ReactivateChildren restores
// them after the think() call that pruned them finishes.
func (n *Node) PruneNonContenders(estPlayoutsLeft int64) {
	n.Mu.Lock()
	defer n.Mu.Unlock()

	var maxVisits int64
	for i := range n.Children {
		if v := n.Children[i].Visits(); v > maxVisits {
			maxVisits = v
		}
	}
	for i := range n.Children {
		if !n.Children[i].Valid() {
			continue
		}
		if n.Children[i].Visits()+estPlayoutsLeft >= maxVisits {
			if n.Children[i].Status() == StatusPruned {
				n.Children[i].SetStatus(StatusActive)
			}
		} else {
			n.Children[i].SetStatus(StatusPruned)
		}
	}
}

// CountContenders returns the number of children currently ACTIVE (not
// PRUNED or invalid), used by think()'s "pruning leaves <=1 contender"
// stop condition.
func (n *Node) CountContenders() int {
	n.Mu.Lock()
	defer n.Mu.Unlock()
	count := 0
	for i := range n.Children {
		if n.Children[i].Active() {
			count++
		}
	}
	return count
}
