package search

import (
	"context"
	"math"
	"time"

	"gosai/board"
	"gosai/config"
	"gosai/node"
)

// updateRoot implements spec.md §4.8's "Advance": if pos is the remembered
// root position plus d>=0 moves at the same komi, roll pos back by d moves,
// verify the resulting hash matches the remembered root hash, then replay
// forward one move at a time, walking the tree alongside and handing every
// discarded sibling subtree to the reaper. Any failure discards the whole
// tree and starts fresh.
func (s *Search) updateRoot(pos *board.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := pos.MoveHistory()

	if !s.haveRoot || pos.Komi() != s.lastKomi || len(history) < s.lastRootMoves {
		s.freshRoot(pos)
		return
	}

	d := len(history) - s.lastRootMoves
	moves := append([]board.Vertex(nil), history[s.lastRootMoves:]...)

	for i := 0; i < d; i++ {
		if !pos.UndoMove() {
			// Can't even roll back cleanly; restore what we can and bail.
			for j := i - 1; j >= 0; j-- {
				pos.ForwardMove(moves[j])
			}
			s.freshRoot(pos)
			return
		}
	}

	if pos.Hash() != s.lastRootHash {
		for _, m := range moves {
			pos.ForwardMove(m)
		}
		s.freshRoot(pos)
		return
	}

	s.reaper.Drain() // node_count must be settled before we start replaying

	// Dry run: walk the chain of children matching moves without touching
	// s.root or node_count. Only once every one of the d moves is confirmed
	// to resolve to an existing child do we actually discard siblings and
	// promote — a miss partway through must never leave the tree
	// half-discarded.
	chain := make([]*node.NodePointer, 0, d)
	walker := s.root
	matched := true
	for _, m := range moves {
		childPtr := walker.FindChild(m)
		if childPtr == nil {
			matched = false
			break
		}
		chain = append(chain, childPtr)
		walker = childPtr.Inflate()
	}

	for _, m := range moves {
		pos.ForwardMove(m)
	}

	if !matched {
		s.freshRoot(pos)
		return
	}

	cur := s.root
	for i, m := range moves {
		discarded := cur.DiscardSiblings(m)
		for _, victim := range discarded {
			s.reaper.Enqueue(victim)
		}
		s.nodeCount.Add(-1) // cur itself, now superseded by its promoted child
		cur = chain[i].Inflate()
	}

	s.root = cur
	s.lastRootHash = pos.Hash()
	s.lastRootMoves = len(history)
}

// freshRoot discards whatever tree exists (if any) and starts a brand new
// unexpanded root matching pos exactly.
func (s *Search) freshRoot(pos *board.Position) {
	if s.root != nil {
		s.reaper.Enqueue(s.root)
	}
	s.root = node.NewNode(board.Pass)
	s.nodeCount.Add(1)
	s.lastRootHash = pos.Hash()
	s.lastRootMoves = len(pos.MoveHistory())
	s.lastKomi = pos.Komi()
	s.haveRoot = true
}

// prepareRootNode implements spec.md §4.9 step 1's root evaluation: expand
// the root if it isn't yet, then inject Dirichlet noise into its priors
// when configured.
func (s *Search) prepareRootNode(ctx context.Context, pos *board.Position) {
	if s.root.Expandable(0) {
		rootPos := pos.Copy()
		created, value, alpkt, beta, err := node.CreateChildren(ctx, s.root, rootPos, s.client, 0, s.cfg.Lambda, s.cfg.Mu, s.nodeCount)
		if err == nil && created {
			// The root's own evaluation is its first visit, as a freshly
			// expanded node's is in PlaySimulation.
			s.root.Update(node.FromEval(value, alpkt, beta).EvalWithBonus(s.root.EvalBonus))
		}
	}
	if s.cfg.Noise {
		s.injectRootNoise(pos.Board.NumVertices())
	}
}

// injectRootNoise draws a Dirichlet(alpha)-distributed vector via the
// standard Gamma-normalization construction (each coordinate a Gamma(alpha,
// 1) draw, normalized to sum to 1) and blends it into the root's priors
// with weight eps, matching spec.md §4.9's "alpha ~= 0.03, eps ~= 0.25 on
// 19x19" — scaled here by 361/board_squares since smaller boards want a
// proportionally larger alpha for the same effective noise concentration,
// the same board-size scaling Leela Zero itself applies.
func (s *Search) injectRootNoise(boardSquares int) {
	const baseAlpha = 0.03
	const eps = 0.25
	alpha := baseAlpha * 361.0 / float64(boardSquares)

	n := s.root.NumChildren()
	if n == 0 {
		return
	}
	noise := make([]float64, n)
	var sum float64
	for i := range noise {
		noise[i] = s.sampleGamma(alpha)
		sum += noise[i]
	}
	if sum > 0 {
		for i := range noise {
			noise[i] /= sum
		}
	}
	s.root.InjectNoise(noise, eps)
}

// sampleGamma draws from Gamma(shape, 1) via the Marsaglia-Tsang method,
// the standard rejection-sampling construction used when no statistics
// library is available (stdlib math/rand has no Gamma distribution and
// nothing in the retrieved example pack provides one either).
func (s *Search) sampleGamma(shape float64) float64 {
	if shape < 1 {
		// Boost via Gamma(shape+1,1) * U^(1/shape), the standard trick for
		// shape < 1 inputs to Marsaglia-Tsang.
		u := s.rnd.Float64()
		return s.sampleGamma(shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = s.rnd.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := s.rnd.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// pruneNonContenders implements spec.md §4.9's prune_noncontenders: a
// child is a contender iff visits + est_playouts_left >= the max visits of
// any sibling. est_playouts_left is measured playouts/second times
// remainingBudget's estimate of the time left. Pruning is skipped only when
// TimeManage is Off.
func (s *Search) pruneNonContenders(start time.Time) {
	if s.cfg.TimeManage == config.TimeManageOff {
		return
	}
	elapsed := time.Since(start)
	playouts := s.playoutCount.Load()
	if elapsed <= 0 || playouts == 0 {
		return
	}
	pps := float64(playouts) / elapsed.Seconds()
	remaining := s.remainingBudget(start, elapsed)
	estLeft := int64(pps * remaining.Seconds())

	s.root.PruneNonContenders(estLeft)
}

// remainingBudget estimates wall-clock time left in this think() call.
// Without an explicit per-move time allotment (spec.md's configuration
// table has no such field — time control is out of this core's scope),
// this is the playouts left under MaxPlayouts translated through the
// measured rate, which is the best a playout-budgeted (rather than
// clock-budgeted) caller can do. MaxVisits is not consulted.
func (s *Search) remainingBudget(start time.Time, elapsed time.Duration) time.Duration {
	if s.cfg.MaxPlayouts > 0 {
		playouts := s.playoutCount.Load()
		left := s.cfg.MaxPlayouts - playouts
		if left <= 0 {
			return 0
		}
		pps := float64(playouts) / elapsed.Seconds()
		if pps <= 0 {
			return 0
		}
		return time.Duration(float64(left) / pps * float64(time.Second))
	}
	return elapsed // no explicit budget: treat "time so far" as a proxy ceiling
}

func (s *Search) contendersLeft() int {
	return s.root.CountContenders()
}
