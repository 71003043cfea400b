package node

import (
	"math"
	"sync/atomic"

	"gosai/board"
)

// NodePointer is the tagged-union child handle from spec.md §3.4: deflated
// carries only (move, prior, status); inflating attaches a full Node. The
// Go rendering keeps move/prior/status directly on the struct (cheap, no
// extra indirection for the common never-visited case) and stores the
// inflated Node behind an atomic pointer so Inflate is lock-free and
// idempotent.
type NodePointer struct {
	move   board.Vertex
	prior  atomic.Uint64 // float64 bits; Dirichlet noise mutates this in place
	status atomic.Int32

	inflated atomic.Pointer[Node]
}

// NewDeflated constructs a deflated NodePointer carrying only move+prior.
func NewDeflated(move board.Vertex, prior float64) *NodePointer {
	p := &NodePointer{move: move}
	p.prior.Store(math.Float64bits(prior))
	p.status.Store(int32(StatusActive))
	return p
}

// Move returns the move this pointer represents, valid whether deflated or
// inflated.
func (p *NodePointer) Move() board.Vertex { return p.move }

// Prior returns the current prior probability.
func (p *NodePointer) Prior() float64 {
	return math.Float64frombits(p.prior.Load())
}

// SetPrior overwrites the prior (used to inject Dirichlet noise at the
// root, spec.md §4.9 step 1).
func (p *NodePointer) SetPrior(prior float64) {
	p.prior.Store(math.Float64bits(prior))
}

// Status returns the pointer's selectability.
func (p *NodePointer) Status() Status { return Status(p.status.Load()) }

// SetStatus updates the pointer's selectability (pruning/reactivation,
// spec.md §4.9 step 5/prune_noncontenders).
func (p *NodePointer) SetStatus(s Status) { p.status.Store(int32(s)) }

// Active reports whether this pointer may currently be selected.
func (p *NodePointer) Active() bool { return p.Status() == StatusActive }

// Valid reports whether this pointer is not StatusInvalid (an invalidated
// superko descent target, spec.md §7 "Illegal descent").
func (p *NodePointer) Valid() bool { return p.Status() != StatusInvalid }

// Inflated reports whether the full Node has been attached.
func (p *NodePointer) Inflated() bool { return p.inflated.Load() != nil }

// Get returns the attached Node, or nil if still deflated.
func (p *NodePointer) Get() *Node { return p.inflated.Load() }

// Inflate attaches a full Node if one is not already attached, returning
// the (possibly pre-existing) Node either way. Idempotent and lock-free:
// concurrent callers racing to inflate the same pointer all observe the
// same winning Node (spec.md §3.4 "Inflation is idempotent under the
// parent's lock" — here lock-free via CAS instead, which is a strictly
// stronger guarantee).
func (p *NodePointer) Inflate() *Node {
	if existing := p.inflated.Load(); existing != nil {
		return existing
	}
	fresh := NewNode(p.move)
	if p.inflated.CompareAndSwap(nil, fresh) {
		return fresh
	}
	return p.inflated.Load()
}

// Visits returns the child's completed-simulation count, 0 if still
// deflated.
func (p *NodePointer) Visits() int64 {
	if n := p.Get(); n != nil {
		return n.Visits()
	}
	return 0
}
