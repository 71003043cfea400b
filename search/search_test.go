package search

import (
	"context"
	"testing"

	"gosai/board"
	"gosai/config"
	"gosai/network"
	"gosai/node"
)

func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Quiet = true
	return cfg
}

// TestThinkOnEmptyBoardReturnsOnBoardMoveOrPass covers the uniform-policy
// empty-board scenario: with no evaluation signal favoring anything, think()
// must still terminate within its playout budget and hand back a legal
// choice.
func TestThinkOnEmptyBoardReturnsOnBoardMoveOrPass(t *testing.T) {
	cfg := quietConfig()
	cfg.MaxPlayouts = 64
	cfg.NumThreads = 1

	s := New(cfg, network.UniformClient{}, nil)
	defer s.Close()

	pos := board.NewPosition(5, 7.5, 0)
	move, ts, err := s.Think(context.Background(), pos, board.Black, NoFlags)
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if !move.IsOnBoard() && !move.IsPass() {
		t.Fatalf("expected an on-board move or pass, got %v", move)
	}
	if ts.Playouts <= 0 {
		t.Fatalf("expected at least one playout, got %d", ts.Playouts)
	}
	if ts.RootVisits <= 0 {
		t.Fatalf("expected root visits > 0, got %d", ts.RootVisits)
	}
}

// TestThinkRootVisitsBoundedByMaxVisitsPlusVirtualLoss is spec.md §8's
// invariant 7: after a MaxVisits=N budget, root.visits settles in
// [N, N+W*VLCount] since in-flight simulations can overshoot the check by at
// most one virtual-loss's worth per worker.
func TestThinkRootVisitsBoundedByMaxVisitsPlusVirtualLoss(t *testing.T) {
	cfg := quietConfig()
	cfg.NumThreads = 4
	cfg.MaxVisits = 200

	s := New(cfg, network.UniformClient{}, nil)
	defer s.Close()

	pos := board.NewPosition(9, 7.5, 0)
	_, ts, err := s.Think(context.Background(), pos, board.Black, NoFlags)
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if ts.RootVisits < cfg.MaxVisits {
		t.Fatalf("root visits %d below MaxVisits %d", ts.RootVisits, cfg.MaxVisits)
	}
	upperBound := cfg.MaxVisits + int64(cfg.NumThreads)*3 // VLCount
	if ts.RootVisits > upperBound {
		t.Fatalf("root visits %d exceeds overshoot bound %d", ts.RootVisits, upperBound)
	}
}

// TestSumOfChildVisitsIsRootVisitsMinusOne holds at any worker count: every
// root visit beyond the root's own first (expansion) visit corresponds to
// exactly one descent into exactly one child.
func TestSumOfChildVisitsIsRootVisitsMinusOne(t *testing.T) {
	cfg := quietConfig()
	cfg.NumThreads = 4
	cfg.MaxPlayouts = 300

	s := New(cfg, network.UniformClient{}, nil)
	defer s.Close()

	pos := board.NewPosition(9, 7.5, 0)
	_, ts, err := s.Think(context.Background(), pos, board.Black, NoFlags)
	if err != nil {
		t.Fatalf("Think: %v", err)
	}

	var sum int64
	s.root.Walk(func(ptr *node.NodePointer) {
		sum += ptr.Visits()
	})
	if sum != ts.RootVisits-1 {
		t.Fatalf("sum of child visits = %d, want root visits-1 = %d", sum, ts.RootVisits-1)
	}
}

// TestThinkSameSeedSingleWorkerIsReproducible covers the same-seed/W=1
// scenario: a fresh Search against a deterministic-but-seeded client,
// single-threaded, must pick the same move and reach the same root-visit
// count every run.
func TestThinkSameSeedSingleWorkerIsReproducible(t *testing.T) {
	cfg := quietConfig()
	cfg.NumThreads = 1
	cfg.MaxPlayouts = 64

	run := func() (board.Vertex, int64) {
		client := &network.DeterministicRandomClient{Seed: 42}
		s := New(cfg, client, nil)
		defer s.Close()
		pos := board.NewPosition(9, 7.5, 0)
		move, ts, err := s.Think(context.Background(), pos, board.Black, NoFlags)
		if err != nil {
			t.Fatalf("Think: %v", err)
		}
		return move, ts.RootVisits
	}

	move1, visits1 := run()
	move2, visits2 := run()
	if move1 != move2 {
		t.Fatalf("move differs across runs: %v vs %v", move1, move2)
	}
	if visits1 != visits2 {
		t.Fatalf("root visits differ across runs: %d vs %d", visits1, visits2)
	}
}
