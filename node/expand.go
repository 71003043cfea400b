package node

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"gosai/board"
	"gosai/network"

	"golang.org/x/exp/slices"
)

// priorMove pairs a normalized prior with the move it belongs to, sorted
// descending before children are constructed (spec.md §4.4 step 6).
type priorMove struct {
	prior float64
	move  board.Vertex
}

// CreateChildren implements spec.md §4.4's seven-step contract. nodeCount
// is the process-wide atomic node counter (spec.md §4.8); CreateChildren
// increments it by one per child actually constructed, matching the
// teacher's original_source reference (`++nodecount` per linked child).
//
// Returns created=false without error in every case spec.md §7 classifies
// as "not an error" (already expanded, terminal, expansion race). A
// non-nil error only comes from the network call itself, which spec.md §7
// treats as fatal to the calling simulation.
func CreateChildren(ctx context.Context, n *Node, pos *board.Position, client network.Client, minPSARatio, lambda, mu float64, nodeCount *NodeCounter) (created bool, value, alpkt, beta float64, err error) {
	// Step 1: lock-free fast path.
	if !n.Expandable(minPSARatio) {
		return false, 0, 0, 0, nil
	}

	// Step 2: acquire lock, recheck under lock, claim is_expanding.
	n.Mu.Lock()
	if pos.Passes() >= 2 {
		n.Mu.Unlock()
		return false, 0, 0, 0, nil
	}
	if !n.Expandable(minPSARatio) {
		n.Mu.Unlock()
		return false, 0, 0, 0, nil
	}
	if n.IsExpanding {
		n.Mu.Unlock()
		return false, 0, 0, 0, nil
	}
	n.IsExpanding = true
	n.Mu.Unlock()

	// Step 3: network call, deliberately outside the lock (spec.md §4.4
	// concurrency note: other simulations may still stall on virtual_loss
	// at this node while the call is in flight).
	ev, evalErr := client.Evaluate(ctx, pos, network.Random)
	if evalErr != nil {
		n.Mu.Lock()
		n.IsExpanding = false
		n.Mu.Unlock()
		return false, 0, 0, 0, fmt.Errorf("network evaluation: %w", evalErr)
	}

	// Step 4: transform to Black's perspective.
	blackToMove := pos.ToMove() == board.Black
	if blackToMove {
		alpkt = float64(ev.Alpha) - pos.Komi()
		value = float64(ev.Value)
	} else {
		alpkt = -float64(ev.Alpha) - pos.Komi()
		value = 1 - float64(ev.Value)
	}
	beta = float64(ev.Beta)

	// Step 5: enumerate legal moves, build and normalize the prior list.
	legal := pos.LegalMoves()
	candidates := make([]priorMove, 0, len(legal)+1)
	legalSum := 0.0
	for _, v := range legal {
		p := float64(ev.Policy[pos.Board.Index(v)])
		candidates = append(candidates, priorMove{prior: p, move: v})
		legalSum += p
	}
	candidates = append(candidates, priorMove{prior: float64(ev.PolicyPass), move: board.Pass})
	legalSum += float64(ev.PolicyPass)

	if legalSum > smallestPositiveFloat64 {
		for i := range candidates {
			candidates[i].prior /= legalSum
		}
	} else {
		uniform := 1.0 / float64(len(candidates))
		for i := range candidates {
			candidates[i].prior = uniform
		}
	}

	// Step 6: sort descending by prior, reserve children passing the ratio.
	slices.SortFunc(candidates, func(a, b priorMove) bool {
		return a.prior > b.prior
	})

	n.Mu.Lock()
	defer n.Mu.Unlock()

	// Open Question 1 resolution: link_nodelist in the original only keeps
	// candidates with old_min_psa > prior >= new_min_psa, implicitly
	// assuming prior >= old_min_psa candidates are already linked from an
	// earlier, coarser expansion. Assert that precondition rather than
	// silently relying on it, since a violation would mean this call is
	// being made on a node with a children vector not produced by a prior
	// CreateChildren call at a coarser ratio.
	if n.MinPSARatioChildren <= 1.0 && len(n.Children) == 0 {
		panic("CreateChildren precondition violated: node claims to be already expanded but has no children")
	}

	maxPrior := candidates[0].prior
	oldMinPSA := maxPrior * n.MinPSARatioChildren
	newMinPSA := maxPrior * minPSARatio

	// Candidates with prior >= oldMinPSA are assumed already linked from an
	// earlier, coarser CreateChildren call on this same node (progressive
	// widening, spec.md §4.8): only append the newly-qualifying ones rather
	// than rebuilding the slice, so an in-progress child's accumulated
	// visits survive a later re-expansion at a finer ratio.
	skipped := false
	for _, c := range candidates {
		switch {
		case c.prior < newMinPSA:
			skipped = true
		case c.prior < oldMinPSA:
			n.Children = append(n.Children, *NewDeflated(c.move, c.prior))
			nodeCount.Add(1)
		}
	}

	if skipped {
		n.MinPSARatioChildren = minPSARatio
	} else {
		n.MinPSARatioChildren = 0
	}

	n.computeSAI(value, alpkt, beta, lambda, mu)
	n.IsExpanding = false

	return true, value, alpkt, beta, nil
}

// smallestPositiveFloat64 stands in for std::numeric_limits<float>::min()
// from the reference implementation's legal_sum check: it is the smallest
// nonzero (subnormal) positive float64, used as the "effectively zero"
// cutoff before falling back to a uniform prior.
const smallestPositiveFloat64 = math.SmallestNonzeroFloat64

// NodeCounter is the process-wide atomic node count Search owns (spec.md
// §4.8): "A global node_count atomic bounds total nodes." Exposed from
// this package, rather than search, so CreateChildren can increment it
// directly as each child is linked.
type NodeCounter struct {
	v atomic.Int64
}

// Add increments the node count by delta (delta may be negative, e.g. when
// LazyReaper frees a subtree).
func (c *NodeCounter) Add(delta int64) { c.v.Add(delta) }

// Load returns the current node count.
func (c *NodeCounter) Load() int64 { return c.v.Load() }
