package network

import (
	"context"
	"sync"

	"gosai/board"

	"golang.org/x/exp/rand"
)

// UniformClient returns a flat policy over every on-board vertex plus pass,
// value 0.5, and a value-only (alpha=beta=0) score head. Useful as the
// simplest possible stand-in for tests that only care about tree mechanics,
// not evaluation quality.
type UniformClient struct{}

func (UniformClient) Evaluate(_ context.Context, pos *board.Position, _ Symmetry) (Eval, error) {
	n := pos.Board.NumVertices()
	policy := make([]float32, n)
	p := float32(1) / float32(n+1)
	for i := range policy {
		policy[i] = p
	}
	return Eval{Policy: policy, PolicyPass: p, Value: 0.5}, nil
}

// ConcentratedClient always prefers a single fixed vertex (or pass, when
// Favorite is Pass), with every other legal move receiving a small uniform
// residual. When Favorite is an occupied vertex no move gets the extra mass. Used to test that PUCT selection and tree reuse
// correctly funnel visits toward a known-best move.
type ConcentratedClient struct {
	Favorite   board.Vertex
	Value      float32
	Alpha      float32
	Beta       float32
	Sharpness  float32 // fraction of policy mass on Favorite, in (0,1]
}

func (c ConcentratedClient) Evaluate(_ context.Context, pos *board.Position, _ Symmetry) (Eval, error) {
	n := pos.Board.NumVertices()
	policy := make([]float32, n)
	sharp := c.Sharpness
	if sharp <= 0 {
		sharp = 0.9
	}
	residual := (1 - sharp) / float32(n+1)
	for i := range policy {
		policy[i] = residual
	}
	policyPass := residual
	if c.Favorite.IsOnBoard() && pos.Board.At(c.Favorite) == board.Empty {
		policy[pos.Board.Index(c.Favorite)] += sharp
	} else if c.Favorite.IsPass() {
		policyPass += sharp
	}
	beta := c.Beta
	if beta == 0 {
		beta = 1
	}
	return Eval{
		Policy:     policy,
		PolicyPass: policyPass,
		Value:      c.Value,
		Alpha:      c.Alpha,
		Beta:       beta,
	}, nil
}

// DeterministicRandomClient draws a reproducible pseudo-random policy and
// value from a seeded source, for tests that want varied-but-repeatable
// evaluations without a real network. Matches the fixed-seed rand idiom
// used by board/zobrist.go so the whole module tells one rand story.
type DeterministicRandomClient struct {
	Seed uint64

	mu  sync.Mutex
	rnd *rand.Rand
}

func (c *DeterministicRandomClient) Evaluate(_ context.Context, pos *board.Position, _ Symmetry) (Eval, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewSource(c.Seed))
	}

	n := pos.Board.NumVertices()
	policy := make([]float32, n)
	var sum float32
	for i := range policy {
		policy[i] = float32(c.rnd.Float64())
		sum += policy[i]
	}
	policyPass := float32(c.rnd.Float64())
	sum += policyPass
	if sum > 0 {
		for i := range policy {
			policy[i] /= sum
		}
		policyPass /= sum
	}

	return Eval{
		Policy:     policy,
		PolicyPass: policyPass,
		Value:      float32(c.rnd.Float64()),
		Alpha:      float32(c.rnd.Float64()*2 - 1),
		Beta:       float32(0.5 + c.rnd.Float64()),
	}, nil
}
