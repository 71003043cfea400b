package search

import (
	"context"
	"testing"

	"gosai/board"
	"gosai/network"
	"gosai/node"
)

// setUpKoPosition builds the classic ko diamond on a 5x5 board: Black has
// just captured a single White stone at (2,2) by playing (2,3), and the
// resulting Black stone at (2,3) is itself a single stone in a ring of
// White, so White immediately recapturing at (2,2) would exactly reproduce
// the position from before Black's capture — a positional-superko
// violation, illegal under spec.md §3.2.
func setUpKoPosition(t *testing.T) (*board.Position, board.Vertex) {
	t.Helper()
	pos := board.NewPosition(5, 0, 0)
	b := &pos.Board

	moves := []struct{ x, y int }{
		{1, 2}, // B
		{2, 2}, // W (will be captured)
		{3, 2}, // B
		{1, 3}, // W
		{2, 1}, // B
		{3, 3}, // W
		{0, 0}, // B filler
		{2, 4}, // W
		{2, 3}, // B captures White at (2,2)
	}
	for i, m := range moves {
		v := b.Vertex(m.x, m.y)
		if !pos.PlayMove(v) {
			t.Fatalf("setup move %d (%d,%d) rejected", i, m.x, m.y)
		}
	}

	recapture := b.Vertex(2, 2)
	if pos.IsMoveLegal(recapture) {
		t.Fatal("expected immediate ko recapture to be illegal")
	}
	return pos, recapture
}

// TestThinkNeverPicksIllegalKoRecapture covers the ko-recapture-exclusion
// scenario: even when a client stakes nearly all its policy mass on the
// illegal recapture vertex, that vertex is never a root child (LegalMoves
// excludes it), so think() can never return it.
func TestThinkNeverPicksIllegalKoRecapture(t *testing.T) {
	pos, recapture := setUpKoPosition(t)

	cfg := quietConfig()
	cfg.NumThreads = 1
	cfg.MaxPlayouts = 200

	client := network.ConcentratedClient{Favorite: recapture, Value: 0.9, Alpha: 5, Beta: 1, Sharpness: 0.9}
	s := New(cfg, client, nil)
	defer s.Close()

	move, _, err := s.Think(context.Background(), pos, pos.ToMove(), NoFlags)
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if move == recapture {
		t.Fatalf("think() returned the illegal ko recapture %v", recapture)
	}
}

// TestTreeReuseAfterPlayMovePreservesChildVisits covers spec.md §8's
// invariant 8: think() -> play_move(m) -> think() must make the second
// think() resume from the child of m, not throw away the visit count that
// child already earned during the first think().
func TestTreeReuseAfterPlayMovePreservesChildVisits(t *testing.T) {
	cfg := quietConfig()
	cfg.NumThreads = 1
	cfg.MaxPlayouts = 300

	pos := board.NewPosition(9, 7.5, 0)
	client := network.UniformClient{}
	s := New(cfg, client, nil)
	defer s.Close()

	move, _, err := s.Think(context.Background(), pos, board.Black, NoFlags)
	if err != nil {
		t.Fatalf("first Think: %v", err)
	}

	childPtr := s.root.FindChild(move)
	if childPtr == nil {
		t.Fatalf("no root child recorded for chosen move %v", move)
	}
	visitsBefore := childPtr.Visits()
	childNode := childPtr.Get()
	if childNode == nil {
		t.Fatalf("chosen move %v's child was never inflated", move)
	}

	if !pos.PlayMove(move) {
		t.Fatalf("play_move(%v) rejected", move)
	}

	if _, _, err := s.Think(context.Background(), pos, pos.ToMove(), NoFlags); err != nil {
		t.Fatalf("second Think: %v", err)
	}

	if s.root != childNode {
		t.Fatal("second think() did not reuse the prior root's child as its new root")
	}
	if s.root.Visits() < visitsBefore {
		t.Fatalf("reused root visits %d dropped below pre-reuse count %d", s.root.Visits(), visitsBefore)
	}
}

// TestUpdateRootDiscardsWholeTreeOnLaterMoveMismatch covers the d>=2 case
// where the first replayed move has a tracked child but the second does
// not (e.g. that child was never expanded past the first move): update_root
// must discard the *entire* old tree exactly once and start fresh, rather
// than half-promoting the first child and then double-freeing the root.
func TestUpdateRootDiscardsWholeTreeOnLaterMoveMismatch(t *testing.T) {
	cfg := quietConfig()
	s := New(cfg, network.UniformClient{}, nil)
	defer s.Close()

	pos := board.NewPosition(9, 7.5, 0)
	m1 := pos.Board.Vertex(4, 4)
	m2 := pos.Board.Vertex(3, 3)

	root := node.NewNode(board.Pass)
	root.Children = append(root.Children, *node.NewDeflated(m1, 1.0))
	root.Children[0].Inflate() // inflated but never expanded: no child for m2

	s.root = root
	s.haveRoot = true
	s.lastRootHash = pos.Hash()
	s.lastRootMoves = 0
	s.lastKomi = pos.Komi()
	s.nodeCount.Add(2) // root + its one inflated child

	if !pos.PlayMove(m1) {
		t.Fatal("m1 rejected")
	}
	if !pos.PlayMove(m2) {
		t.Fatal("m2 rejected")
	}

	s.updateRoot(pos)
	s.reaper.Drain()

	if s.root == root {
		t.Fatal("updateRoot kept the stale root instead of starting fresh")
	}
	if s.root.Move != board.Pass || s.root.NumChildren() != 0 {
		t.Fatalf("expected a brand new unexpanded root, got %v", s.root)
	}
	if got := s.nodeCount.Load(); got != 1 {
		t.Fatalf("node_count = %d after fresh root, want 1 (no leak, no double free)", got)
	}
	if pos.MoveNum() != 2 {
		t.Fatalf("pos.MoveNum() = %d, want 2 (pos must end up fully replayed)", pos.MoveNum())
	}
}
