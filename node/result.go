package node

import "gosai/sai"

// resultKind distinguishes the three SearchResult variants from spec.md
// §4.7: a terminal score, a network evaluation, or an invalidated descent
// (positional superko hit mid-simulation).
type resultKind int

const (
	resultInvalid resultKind = iota
	resultScore
	resultEval
)

// SearchResult is the value carried up one simulation's unwind. It is a
// small value type, not a pointer, so backing it up the path costs no
// allocation per node.
type SearchResult struct {
	kind  resultKind
	value float64 // FromScore: {0, 0.5, 1}; FromEval: net_value (Black perspective)
	alpkt float64 // FromEval only
	beta  float64 // FromEval only
}

// FromScore builds a terminal result from a finished-game area score
// (Black's perspective, positive favors Black): score>0 -> 1, score<0 -> 0,
// score==0 -> 0.5.
func FromScore(score float64) SearchResult {
	v := 0.5
	switch {
	case score > 0:
		v = 1
	case score < 0:
		v = 0
	}
	return SearchResult{kind: resultScore, value: v}
}

// FromEval builds a result from a fresh network evaluation already
// transformed to Black's perspective (spec.md §4.4 step 4).
func FromEval(value, alpkt, beta float64) SearchResult {
	return SearchResult{kind: resultEval, value: value, alpkt: alpkt, beta: beta}
}

// Invalid is returned when a simulation's descent was aborted (superko hit)
// and must not be backed up.
var Invalid = SearchResult{kind: resultInvalid}

// Valid reports whether this result should be backed up the tree.
func (r SearchResult) Valid() bool { return r.kind != resultInvalid }

// Eval returns the plain backup value: for FromScore results this is the
// terminal value itself; for FromEval results it is the raw net value with
// no SAI bonus applied.
func (r SearchResult) Eval() float64 {
	return r.value
}

// EvalWithBonus returns the backup value after applying the SAI
// exploration-bonus offset xbar (the parent's chosen eval_bonus, spec.md
// §4.5): for terminal results the bonus has no meaning and the plain
// terminal value is returned unchanged; for network evaluations it
// evaluates sai.EvalWithBonus at xbar so intermediate nodes accumulate
// consistent values.
func (r SearchResult) EvalWithBonus(xbar float64) float64 {
	if r.kind != resultEval || r.beta == 0 {
		return r.value
	}
	return sai.EvalWithBonus(r.alpkt, r.beta, xbar)
}

// Alpkt and Beta expose the raw score head for callers that compute SAI
// blending after the fact (create_children uses these before the node
// stores its own copies).
func (r SearchResult) Alpkt() float64 { return r.alpkt }
func (r SearchResult) Beta() float64  { return r.beta }
