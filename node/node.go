// Package node implements the search tree's node representation: atomic
// visit/eval/virtual-loss counters, the deflated/inflated child handle
// (NodePointer), expansion (network evaluation + child creation), PUCT
// selection, and the per-simulation play/backup step. See spec.md §3.3,
// §3.4, §4.4-4.7.
package node

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"gosai/board"
	"gosai/sai"
)

// Status is a node's selectability state.
type Status int32

const (
	StatusActive Status = iota
	StatusPruned
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPruned:
		return "pruned"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// VLCount is the virtual-loss increment applied to a node for the duration
// of a descent through it (spec.md §3.3, §4.6).
const VLCount = 3

// Node is a tree node. Visits/BlackEvals/VirtualLoss are mutated from many
// worker goroutines concurrently and are therefore atomics; Children and
// the expansion-related fields are mutated only under Mu, matching the
// locking table in spec.md §5.
type Node struct {
	Move board.Vertex

	visits      atomic.Int64
	blackEvals  atomic.Uint64 // float64 bits; see addBlackEval
	virtualLoss atomic.Int32

	// Cached per-node network evaluation, set once by CreateChildren under
	// Mu and read thereafter without locking by anything that already holds
	// a happens-before relationship via the children-vector publish. Direct
	// external readers (e.g. search stats) should take Mu.
	NetValue float64
	NetAlpkt float64
	NetBeta  float64

	// SAI-blended evaluations derived from NetAlpkt/NetBeta (spec.md §4.5).
	AgentEval float64
	EvalBonus float64
	EvalBase  float64

	Mu                  sync.Mutex
	Children            []NodePointer
	MinPSARatioChildren float64 // expanded iff <= 1.0
	IsExpanding         bool
}

// NewNode constructs a node for the given move, unexpanded.
func NewNode(move board.Vertex) *Node {
	return &Node{Move: move, MinPSARatioChildren: 2.0} // > 1.0: not yet expanded
}

// Visits returns the completed-simulation count.
func (n *Node) Visits() int64 { return n.visits.Load() }

// VirtualLoss returns the current pending-visit count.
func (n *Node) VirtualLoss() int32 { return n.virtualLoss.Load() }

// BlackEvals returns the accumulated Black-perspective value sum.
func (n *Node) BlackEvals() float64 {
	return math.Float64frombits(n.blackEvals.Load())
}

// AddVirtualLoss adds VLCount to the pending-visit counter (applied while
// descending through this node during selection, spec.md §4.7 step 1).
func (n *Node) AddVirtualLoss() { n.virtualLoss.Add(VLCount) }

// RemoveVirtualLoss undoes AddVirtualLoss (spec.md §4.7 step 5).
func (n *Node) RemoveVirtualLoss() { n.virtualLoss.Add(-VLCount) }

// Update records one completed simulation's backup value: visits++,
// black_evals += v (spec.md §4.7 step 4). The float64 add is a CAS loop
// over the bit pattern since there is no atomic.Float64 in the standard
// library.
func (n *Node) Update(v float64) {
	n.visits.Add(1)
	n.addBlackEval(v)
}

func (n *Node) addBlackEval(delta float64) {
	for {
		old := n.blackEvals.Load()
		newBits := math.Float64bits(math.Float64frombits(old) + delta)
		if n.blackEvals.CompareAndSwap(old, newBits) {
			return
		}
	}
}

// FirstVisit reports whether this node has never completed a simulation.
func (n *Node) FirstVisit() bool { return n.Visits() == 0 }

// HasChildren reports whether this node is expanded, i.e. children were
// populated at some ratio <= 1.0 (spec.md §3.3 invariant).
func (n *Node) HasChildren() bool {
	n.Mu.Lock()
	defer n.Mu.Unlock()
	return n.MinPSARatioChildren <= 1.0
}

// Expandable reports whether a call with the given min_psa_ratio would do
// useful work, i.e. nobody has already expanded at least this finely
// (spec.md §4.4 step 1's lock-free fast path).
func (n *Node) Expandable(minPSARatio float64) bool {
	return minPSARatio < n.MinPSARatioChildren
}

// Eval returns the node's own cached evaluation (Black perspective) flipped
// to color's perspective: the raw network value, not the accumulated
// search statistics. Used before any simulation has passed through this
// node (e.g. reporting a freshly expanded node's value).
func (n *Node) Eval(color board.Color) float64 {
	if color == board.White {
		return 1 - n.NetValue
	}
	return n.NetValue
}

// AgentEvalFor returns AgentEval from color's perspective (spec.md §4.6 FPU
// formula consumes this).
func (n *Node) AgentEvalFor(color board.Color) float64 {
	if color == board.White {
		return 1 - n.AgentEval
	}
	return n.AgentEval
}

// EvalFrom computes the PUCT Q-value of this node (as a *child*) from
// color's perspective, folding in the pending virtual loss so concurrent
// descents are biased away from already-visited paths (spec.md §4.6):
// blackeval is adjusted by the virtual-loss count before dividing when
// color is White, mirroring the asymmetric treatment described there.
func (n *Node) EvalFrom(color board.Color) float64 {
	vloss := float64(n.VirtualLoss())
	visits := float64(n.Visits()) + vloss
	blackEval := n.BlackEvals()
	if color == board.White {
		blackEval += vloss
	}
	score := blackEval / visits
	if color == board.White {
		score = 1 - score
	}
	return score
}

// computeSAI fills AgentEval/EvalBonus/EvalBase from a fresh (alpkt, beta,
// value) network evaluation using the given temperature mixers (spec.md
// §4.5, lambda/mu from Config). Must be called with Mu held (CreateChildren's
// expansion lock).
func (n *Node) computeSAI(value, alpkt, beta, lambda, mu float64) {
	n.NetValue, n.NetAlpkt, n.NetBeta = value, alpkt, beta
	if beta == 0 {
		n.AgentEval, n.EvalBonus, n.EvalBase = sai.ValueOnlyEvals(value)
		return
	}
	pi := sai.Pi(alpkt, beta)
	piLambda, piMu := sai.BlendedProbabilities(pi, lambda, mu)
	bonus, base := sai.EvalBonusBase(alpkt, beta, piLambda, piMu)
	n.EvalBonus, n.EvalBase = bonus, base
	n.AgentEval = sai.AgentEval(alpkt, beta, base, bonus)
}

func (n *Node) String() string {
	return fmt.Sprintf("Node{move=%v visits=%d blackEvals=%.3f}",
		n.Move, n.Visits(), n.BlackEvals())
}
