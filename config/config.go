// Package config holds the tunable search options spec.md §6 lists, as one
// struct passed by reference into search.New rather than the teacher's own
// package-level var defaults (see DESIGN.md for why config specifically
// breaks from that idiom).
package config

// TimeManage selects how think() budgets wall-clock time against the move
// clock.
type TimeManage int

const (
	TimeManageOff TimeManage = iota
	TimeManageOn
	TimeManageFast
)

func (t TimeManage) String() string {
	switch t {
	case TimeManageOff:
		return "off"
	case TimeManageOn:
		return "on"
	case TimeManageFast:
		return "fast"
	default:
		return "unknown"
	}
}

// Config is the full recognised option table from spec.md §6.
type Config struct {
	CPuct        float64 // exploration constant in PUCT
	FPUReduction float64 // first-play-urgency reduction coefficient
	FPUZero      bool    // if true, use 0.5 instead of parent eval as FPU base
	Noise        bool    // enable Dirichlet noise at root

	Lambda float64 // SAI pi_lambda mixer
	Mu     float64 // SAI pi_mu mixer

	MaxPlayouts int64 // per-search playout budget, 0 = unbounded
	MaxVisits   int64 // per-search root-visit budget, 0 = unbounded
	NumThreads  int   // worker count W

	RandomCnt int // opening-move randomisation cutoff, in moves

	// ResignPct is the resignation threshold percent. Negative selects the
	// default (10); 0 disables resignation outright.
	ResignPct int

	TimeManage TimeManage
	DumbPass   bool // if true, disable pass-heuristic corrections
	Quiet      bool // suppress the stats broadcast Think sends when it finishes

	MaxTreeSize int64 // node budget backing the progressive-widening thresholds (spec.md §4.8)
}

// Default returns the configuration spec.md's defaults describe: moderate
// exploration, FPU reduction on, no root noise, balanced SAI mixers, one
// worker, resignation at the documented 10% default threshold, full time
// management, and pass-heuristic corrections enabled.
func Default() Config {
	return Config{
		CPuct:        1.5,
		FPUReduction: 0.25,
		FPUZero:      false,
		Noise:        false,

		Lambda: 0.25,
		Mu:     0.1,

		MaxPlayouts: 0,
		MaxVisits:   0,
		NumThreads:  1,

		RandomCnt: 0,

		ResignPct: -1,

		TimeManage: TimeManageOn,
		DumbPass:   false,
		Quiet:      false,

		MaxTreeSize: 1 << 22,
	}
}

// ResignThreshold resolves ResignPct into the winrate threshold
// should_resign compares bestscore against (spec.md §7): 0.10 when
// ResignPct is negative (the documented default), otherwise
// 0.01*ResignPct.
func (c Config) ResignThreshold() float64 {
	if c.ResignPct < 0 {
		return 0.10
	}
	return 0.01 * float64(c.ResignPct)
}

// ResignDisabled reports whether resignation is switched off entirely
// (ResignPct == 0, spec.md §7).
func (c Config) ResignDisabled() bool {
	return c.ResignPct == 0
}
