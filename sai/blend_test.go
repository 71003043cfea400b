package sai

import (
	"math"
	"testing"
)

func TestPiAndBlendedProbabilities(t *testing.T) {
	alpkt, beta := 1.5, 0.8
	pi := Pi(alpkt, beta)
	if pi <= 0 || pi >= 1 {
		t.Fatalf("pi out of (0,1): %v", pi)
	}
	piLambda, piMu := BlendedProbabilities(pi, 0.25, 0.1)
	// lambda and mu blend pi toward 0.5; for pi > 0.5 both land between 0.5
	// and pi, and the larger mixer (lambda) lands closer to 0.5.
	if !(piLambda > 0.5 && piLambda < piMu && piMu < pi) {
		t.Fatalf("blended probabilities out of order: pi=%v piLambda=%v piMu=%v", pi, piLambda, piMu)
	}
}

func TestValueOnlyEvalsAreDegenerate(t *testing.T) {
	agent, bonus, base := ValueOnlyEvals(0.73)
	if agent != 0.73 || bonus != 0 || base != 0 {
		t.Fatalf("expected degenerate SAI eval, got agent=%v bonus=%v base=%v", agent, bonus, base)
	}
}

// rawClosedForm evaluates the closed-form expression from spec.md §4.5
// without the cutoff/saturation branch, used to test continuity of the
// underlying formula independent of where EvalWithBonus switches branches.
func rawClosedForm(alpkt, beta, xbar float64) float64 {
	num := Sigmoid(alpkt, beta, xbar)
	den := Sigmoid(alpkt, beta, 0)
	return 1 - math.Log(num/den)/(beta*xbar)
}

// TestEvalWithBonusContinuityAtCutoff resolves spec.md Open Question 2: the
// raw closed-form formula must not jump discontinuously as
// (|alpkt|+|xbar|)*beta crosses the 10.0 cutoff, i.e. values computed just
// below and just above the cutoff (both via the raw formula, ignoring which
// branch EvalWithBonus would pick) must agree within 1e-3.
func TestEvalWithBonusContinuityAtCutoff(t *testing.T) {
	beta := 1.0
	for _, alpkt := range []float64{-3.0, 2.0, 5.0} {
		below := rawClosedForm(alpkt, beta, (9.999)/beta-math.Abs(alpkt))
		above := rawClosedForm(alpkt, beta, (10.001)/beta-math.Abs(alpkt))
		if math.Abs(below-above) > 1e-3 {
			t.Fatalf("alpkt=%v: discontinuity across cutoff: below=%v above=%v", alpkt, below, above)
		}
	}
}

func TestEvalWithBonusZeroOffsetMatchesPi(t *testing.T) {
	alpkt, beta := 0.3, 1.2
	got := EvalWithBonus(alpkt, beta, 0)
	want := Pi(alpkt, beta)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("EvalWithBonus(x=0) = %v, want Pi() = %v", got, want)
	}
}

func TestAgentEvalAveragesBonusAndBase(t *testing.T) {
	alpkt, beta := 0.0, 1.0
	agent := AgentEval(alpkt, beta, -0.2, 0.2)
	evalAtBase := EvalWithBonus(alpkt, beta, -0.2)
	evalAtBonus := EvalWithBonus(alpkt, beta, 0.2)
	want := (evalAtBase + evalAtBonus) / 2
	if math.Abs(agent-want) > 1e-9 {
		t.Fatalf("AgentEval = %v, want %v", agent, want)
	}
}
