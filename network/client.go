// Package network defines the interface the search core uses to reach the
// neural network evaluator, kept deliberately opaque per spec.md §4.3: the
// core never knows whether a call is a local forward pass or a remote RPC,
// only that it is thread-safe and possibly expensive.
package network

import (
	"context"

	"gosai/board"
)

// Symmetry selects one of the eight board symmetries the network may be
// evaluated under, or Random to let the client pick one per call (used by
// create_children, spec.md §4.4 step 3).
type Symmetry int

const (
	Symmetry0 Symmetry = iota
	Symmetry1
	Symmetry2
	Symmetry3
	Symmetry4
	Symmetry5
	Symmetry6
	Symmetry7
	Random Symmetry = 8
)

// Eval is the raw network output for one position, in the network's own
// (not yet perspective-corrected) convention: value is the probability of
// the position's side-to-move winning, alpha/beta are the score head.
// Policy is dense, indexed by board.Board.Index (0..size*size-1), because
// the network operates on an unpadded board and knows nothing of the
// letterboxed border; entries are non-negative and need not sum to 1
// (spec.md §4.3).
type Eval struct {
	Policy     []float32 // len == position.Board.NumVertices()
	PolicyPass float32
	Value      float32
	Alpha      float32
	Beta       float32
}

// Client is the interface create_children consumes (spec.md §4.3, §6). A
// real implementation wraps an inference server or an embedded model;
// mock.go provides fakes for tests and the cmd/selfplay driver. ctx carries
// cancellation/deadlines for what is potentially a remote RPC, the same way
// the teacher's tuner.Train threads a context through its own long-running
// call.
//
// Implementations must be safe for concurrent use by multiple search
// workers: the core treats Evaluate as an opaque, possibly slow, thread-safe
// call and never serializes access to it itself.
type Client interface {
	Evaluate(ctx context.Context, pos *board.Position, sym Symmetry) (Eval, error)
}
