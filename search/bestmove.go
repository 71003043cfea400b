package search

import (
	"math"
	"strconv"

	"gosai/board"
	"gosai/node"
	"gosai/stats"

	"golang.org/x/exp/slices"
)

// openingTemperature is the T in "probability proportional to
// visits^(1/T)" (spec.md §4.9 step 6). The source text never pins T down
// numerically; T=1 (plain visit-proportional sampling) is the simplest
// reading and what Leela-Zero-lineage engines use for this exact heuristic.
const openingTemperature = 1.0

type rootChild struct {
	ptr  *node.NodePointer
	node *node.Node // nil if never inflated (zero visits, not a candidate)
}

// bestMove implements spec.md §4.9 step 6 plus §7's resign/pass checks,
// which run last.
func (s *Search) bestMove(pos *board.Position, flags PassFlag) board.Vertex {
	candidates := s.sortedRootChildren()
	if len(candidates) == 0 {
		return board.Pass
	}

	best := candidates[0]
	move := best.ptr.Move()

	// Root children's mean values are Black's winrate; shouldResign compares
	// the winrate of the side to move.
	moverScore := func(m board.Vertex) float64 {
		sc := s.scoreOfMove(candidates, m)
		if pos.ToMove() == board.White {
			return 1 - sc
		}
		return sc
	}

	if pos.MoveNum() < s.cfg.RandomCnt {
		if picked := s.randomOpeningMove(candidates); picked != board.NoVertex {
			// If the random pick would trigger resignation, spec.md §4.9
			// step 6 reverts to the deterministic best (already `move`).
			if !s.shouldResign(flags, moverScore(picked), pos) {
				move = picked
			}
		}
	}

	bestScore := moverScore(move)
	if s.shouldResign(flags, bestScore, pos) {
		return board.Resign
	}

	return s.passHeuristic(pos, move, flags)
}

// sortedRootChildren returns the root's children sorted descending by
// (visits, prior, mean_value), spec.md §4.9 step 6's exact sort key. Called
// only after workers have joined, so a direct walk needs no extra locking
// beyond what Walk already takes.
func (s *Search) sortedRootChildren() []rootChild {
	out := make([]rootChild, 0, s.root.NumChildren())
	s.root.Walk(func(ptr *node.NodePointer) {
		out = append(out, rootChild{ptr: ptr, node: ptr.Get()})
	})
	slices.SortFunc(out, func(a, b rootChild) bool {
		av, bv := a.ptr.Visits(), b.ptr.Visits()
		if av != bv {
			return av > bv
		}
		if a.ptr.Prior() != b.ptr.Prior() {
			return a.ptr.Prior() > b.ptr.Prior()
		}
		return s.meanValue(a) > s.meanValue(b)
	})
	return out
}

func (s *Search) meanValue(c rootChild) float64 {
	if c.node == nil || c.node.Visits() == 0 {
		return 0.5
	}
	return c.node.BlackEvals() / float64(c.node.Visits())
}

func (s *Search) evalOf(c rootChild) float64 {
	return s.meanValue(c)
}

func (s *Search) scoreOfMove(candidates []rootChild, move board.Vertex) float64 {
	for _, c := range candidates {
		if c.ptr.Move() == move {
			return s.meanValue(c)
		}
	}
	return 0.5
}

// randomOpeningMove samples a move with probability proportional to
// visits^(1/T) among candidates with at least one visit, or NoVertex if no
// candidate qualifies.
func (s *Search) randomOpeningMove(candidates []rootChild) board.Vertex {
	weights := make([]float64, 0, len(candidates))
	moves := make([]board.Vertex, 0, len(candidates))
	var total float64
	for _, c := range candidates {
		v := float64(c.ptr.Visits())
		if v <= 0 {
			continue
		}
		w := math.Pow(v, 1.0/openingTemperature)
		weights = append(weights, w)
		moves = append(moves, c.ptr.Move())
		total += w
	}
	if total <= 0 {
		return board.NoVertex
	}
	r := s.rnd.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return moves[i]
		}
	}
	return moves[len(moves)-1]
}

// shouldResign implements spec.md §7's should_resign cascade exactly.
func (s *Search) shouldResign(flags PassFlag, bestScore float64, pos *board.Position) bool {
	if s.cfg.ResignDisabled() || flags.has(NoResign) {
		return false
	}
	boardSquares := pos.Board.NumVertices()
	if pos.MoveNum() <= boardSquares/4 {
		return false
	}
	threshold := s.cfg.ResignThreshold()
	if s.cfg.ResignPct < 0 && pos.Handicap() > 0 && pos.ToMove() == board.White {
		// Blend in a handicap-scaled threshold for the first ~0.6*board_squares
		// moves, default settings only: White in a handicap game is given
		// more rope before resigning, tapering linearly back to the plain
		// threshold. A user-supplied ResignPct opts out of the blend.
		cutoff := int(0.6 * float64(boardSquares))
		if pos.MoveNum() < cutoff {
			handicapThreshold := threshold / (1 + float64(pos.Handicap()))
			frac := float64(pos.MoveNum()) / float64(cutoff)
			threshold = handicapThreshold*(1-frac) + threshold*frac
		}
	}
	return bestScore <= threshold
}

// passHeuristic implements spec.md §7's pass-heuristic, with NOPASS taking
// precedence over dumbpass when both interact (Open Question 3).
func (s *Search) passHeuristic(pos *board.Position, move board.Vertex, flags PassFlag) board.Vertex {
	if flags.has(NoPass) {
		if move.IsPass() {
			return s.bestNonPassFallback(pos)
		}
		return move
	}
	if s.cfg.DumbPass {
		return move
	}
	if !move.IsPass() {
		return move
	}

	score := pos.FinalScore()
	passingLoses := (pos.ToMove() == board.Black && score < 0) || (pos.ToMove() == board.White && score > 0)
	if !passingLoses {
		return move
	}
	// bestNonPassFallback always returns either an on-board vertex or Pass
	// (when no non-pass child exists), so its result is used unconditionally.
	return s.bestNonPassFallback(pos)
}

// bestNonPassFallback returns the highest-ranked non-pass root child, or
// Pass if none exists (spec.md §7: "accept pass only if no non-pass child
// exists").
func (s *Search) bestNonPassFallback(pos *board.Position) board.Vertex {
	for _, c := range s.sortedRootChildren() {
		if !c.ptr.Move().IsPass() {
			return c.ptr.Move()
		}
	}
	return board.Pass
}

// principalVariation walks the highest-visit child at each level as far as
// inflated nodes go, for ThinkStats.PV (AMBIENT addition).
func (s *Search) principalVariation() []board.Vertex {
	var pv []board.Vertex
	cur := s.root
	for len(pv) < 64 {
		var best *node.NodePointer
		var bestVisits int64 = -1
		cur.Walk(func(ptr *node.NodePointer) {
			if v := ptr.Visits(); v > bestVisits {
				bestVisits = v
				best = ptr
			}
		})
		if best == nil || bestVisits <= 0 {
			break
		}
		pv = append(pv, best.Move())
		next := best.Get()
		if next == nil {
			break
		}
		cur = next
	}
	return pv
}

func (ts ThinkStats) toSnapshot(move board.Vertex, done bool) stats.Snapshot {
	pv := make([]string, len(ts.PV))
	for i, v := range ts.PV {
		pv[i] = vertexLabel(v)
	}
	var pps float64
	if ts.Elapsed > 0 {
		pps = float64(ts.Playouts) / ts.Elapsed.Seconds()
	}
	return stats.Snapshot{
		Move:        vertexLabel(move),
		RootVisits:  ts.RootVisits,
		Playouts:    ts.Playouts,
		ElapsedMs:   ts.Elapsed.Milliseconds(),
		PlayoutsSec: pps,
		WinRate:     ts.WinRate,
		PV:          pv,
		Done:        done,
	}
}

func vertexLabel(v board.Vertex) string {
	switch {
	case v.IsPass():
		return "pass"
	case v.IsResign():
		return "resign"
	default:
		// GTP-style coordinate letters are a GTP concern, explicitly out of
		// this core's scope; the raw vertex id is enough for a stats feed.
		return strconv.Itoa(int(v))
	}
}
