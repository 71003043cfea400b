// Package search implements the think loop: parallel playouts over a
// shared node tree, tree reuse across moves, and best-move/resign/pass
// decision logic (spec.md §4.8, §4.9, §7).
package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"gosai/board"
	"gosai/config"
	"gosai/network"
	"gosai/node"
	"gosai/reaper"
	"gosai/stats"

	"golang.org/x/exp/rand"
)

// PassFlag mirrors spec.md §6's passflag subset({NOPASS, NORESIGN}).
type PassFlag int

const (
	NoFlags  PassFlag = 0
	NoPass   PassFlag = 1 << 0
	NoResign PassFlag = 1 << 1
)

func (f PassFlag) has(bit PassFlag) bool { return f&bit != 0 }

// ThinkStats is the AMBIENT addition to think()'s documented move/passflag
// contract (SPEC_FULL.md §6): a snapshot of what the just-finished search
// did, used by cmd/searchbench and the stats package's broadcast.
type ThinkStats struct {
	Playouts   int64
	Elapsed    time.Duration
	RootVisits int64
	WinRate    float64
	PV         []board.Vertex
}

// Search owns one persistent tree across successive think() calls, the
// process-wide node counter, and the background reaper that frees subtrees
// discarded by tree reuse.
type Search struct {
	cfg    config.Config
	client network.Client
	hub    *stats.Hub // nil if unused

	nodeCount *node.NodeCounter
	reaper    *reaper.Reaper

	mu            sync.Mutex // guards root/lastRootHash/lastRootMoves/lastKomi
	root          *node.Node
	lastRootHash  uint64
	lastRootMoves int
	lastKomi      float64
	haveRoot      bool

	running atomic.Bool
	rnd     *rand.Rand

	playoutCount atomic.Int64
}

// New constructs a Search with its own node counter and LazyReaper. cfg is
// never mutated for the lifetime of the returned Search, per spec.md §9
// ("keep configuration immutable for the lifetime of a search"); hub may be
// nil to disable stats broadcast.
func New(cfg config.Config, client network.Client, hub *stats.Hub) *Search {
	count := &node.NodeCounter{}
	workers := cfg.NumThreads
	if workers < 1 {
		workers = 1
	}
	return &Search{
		cfg:       cfg,
		client:    client,
		hub:       hub,
		nodeCount: count,
		reaper:    reaper.New(workers, count),
		rnd:       rand.New(rand.NewSource(1)),
	}
}

// Close stops the background reaper. Safe to call once a Search is no
// longer needed.
func (s *Search) Close() {
	s.reaper.Close()
}

// NodeCount returns the live tree-size counter.
func (s *Search) NodeCount() int64 { return s.nodeCount.Load() }

// Think runs spec.md §4.9's loop against pos (mutated and restored in
// place during tree-reuse bookkeeping, but left exactly as passed once
// Think returns) and returns the chosen move plus a ThinkStats summary.
// The search always plays for pos.ToMove(); color only selects the
// perspective of ThinkStats.WinRate and does not change the side searched.
// flags is spec.md §6's passflag subset.
func (s *Search) Think(ctx context.Context, pos *board.Position, color board.Color, flags PassFlag) (board.Vertex, ThinkStats, error) {
	start := time.Now()
	s.playoutCount.Store(0)

	s.updateRoot(pos)
	s.prepareRootNode(ctx, pos)

	s.running.Store(true)
	defer s.running.Store(false)

	deps := s.evalDeps()

	var wg sync.WaitGroup
	workers := s.cfg.NumThreads
	if workers < 1 {
		workers = 1
	}
	var firstErr atomic.Value // stores error

	for w := 1; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runWorker(ctx, pos.Copy(), deps, start, &firstErr)
		}()
	}
	// The calling goroutine is worker W, matching spec.md §5's "a fixed
	// OS-thread pool of W workers plus the caller thread" — here the
	// caller IS one of the W.
	s.runWorker(ctx, pos.Copy(), deps, start, &firstErr)

	wg.Wait()

	if errVal := firstErr.Load(); errVal != nil {
		return board.NoVertex, ThinkStats{}, errVal.(error)
	}

	s.root.ReactivateChildren()

	move := s.bestMove(pos, flags)

	elapsed := time.Since(start)
	ts := ThinkStats{
		Playouts:   s.playoutCount.Load(),
		Elapsed:    elapsed,
		RootVisits: s.root.Visits(),
		WinRate:    s.root.AgentEvalFor(color),
		PV:         s.principalVariation(),
	}

	if s.hub != nil && !s.cfg.Quiet {
		s.hub.Broadcast(ts.toSnapshot(move, true))
	}

	return move, ts, nil
}

// runWorker repeatedly calls PlaySimulation on a thread-local copy of the
// root position until shouldStop reports true or ctx is cancelled,
// recording the first error it sees without clobbering one a sibling
// worker already recorded (spec.md §7: "network unavailable... propagated
// to the caller").
func (s *Search) runWorker(ctx context.Context, localPos *board.Position, deps node.EvalDeps, start time.Time, firstErr *atomic.Value) {
	for {
		if ctx.Err() != nil {
			return
		}
		if !s.running.Load() {
			return
		}
		if s.shouldStop(start) {
			s.running.Store(false)
			return
		}
		simPos := localPos.Copy()
		_, err := node.PlaySimulation(ctx, simPos, s.root, true, deps)
		if err != nil {
			firstErr.CompareAndSwap(nil, err)
			s.running.Store(false)
			return
		}
		s.playoutCount.Add(1)

		if playouts := s.playoutCount.Load(); playouts%256 == 0 {
			s.pruneNonContenders(start)
			if s.contendersLeft() <= 1 && s.cfg.TimeManage != config.TimeManageOff {
				s.running.Store(false)
				return
			}
		}
	}
}

func (s *Search) evalDeps() node.EvalDeps {
	return node.EvalDeps{
		Client:      s.client,
		MinPSARatio: s.minPSARatio(),
		Lambda:      s.cfg.Lambda,
		Mu:          s.cfg.Mu,
		NodeCount:   s.nodeCount,
		MaxTreeSize: s.cfg.MaxTreeSize,
		Selection: node.SelectionConfig{
			CPuct:        s.cfg.CPuct,
			FPUReduction: s.cfg.FPUReduction,
			FPUZero:      s.cfg.FPUZero,
			Noise:        s.cfg.Noise,
		},
	}
}

// minPSARatio implements spec.md §4.8's tree-size budget thresholds: above
// 50% of MaxTreeSize, candidates below 10^-3*max_prior are skipped; above
// 95%, the cutoff tightens to 10^-2.
func (s *Search) minPSARatio() float64 {
	if s.cfg.MaxTreeSize <= 0 {
		return 0
	}
	frac := float64(s.nodeCount.Load()) / float64(s.cfg.MaxTreeSize)
	switch {
	case frac > 0.95:
		return 1e-2
	case frac > 0.50:
		return 1e-3
	default:
		return 0
	}
}

func (s *Search) shouldStop(start time.Time) bool {
	if s.cfg.MaxPlayouts > 0 && s.playoutCount.Load() >= s.cfg.MaxPlayouts {
		return true
	}
	if s.cfg.MaxVisits > 0 && s.root.Visits() >= s.cfg.MaxVisits {
		return true
	}
	return false
}
