// Package sai implements the score/temperature ("SAI") evaluation blending
// described in spec.md §4.5: converting a network's (alpha, beta) score
// head into a winrate, and deriving the exploration-bonus/anchor-base
// virtual score offsets used during PUCT selection and backup.
package sai

import "math"

// Sigmoid computes sigma(beta * (alpkt - x)), the network's implied
// probability of winning at virtual komi offset x.
func Sigmoid(alpkt, beta, x float64) float64 {
	return 1 / (1 + math.Exp(-beta*(alpkt-x)))
}

// inverseSigmoidOverBeta computes sigma^-1(p) / beta = log(p/(1-p)) / beta,
// i.e. the value alpkt-x takes when sigma(beta*(alpkt-x)) == p. Used to
// turn a target probability into a virtual score offset relative to alpkt.
//
// Returns NaN for p outside (0, 1); callers must clamp (spec.md's
// saturation rule at the extremes handles that).
func inverseSigmoidOverBeta(p, beta float64) float64 {
	if p <= 0 || p >= 1 {
		return math.NaN()
	}
	return math.Log(p/(1-p)) / beta
}

// Pi returns the network's probability of winning at the current komi
// (x=0): sigma(beta * alpkt).
func Pi(alpkt, beta float64) float64 {
	return Sigmoid(alpkt, beta, 0)
}

// BlendedProbabilities returns pi_lambda and pi_mu, the temperature-blended
// probabilities used to derive the bonus/base score offsets (spec.md §4.5).
func BlendedProbabilities(pi, lambda, mu float64) (piLambda, piMu float64) {
	piLambda = (1-lambda)*pi + lambda*0.5
	piMu = (1-mu)*pi + mu*0.5
	return piLambda, piMu
}

// EvalBonusBase computes eval_bonus and eval_base: the virtual score
// offsets that would produce pi_lambda and pi_mu respectively, relative to
// alpkt ("eval_bonus = σ⁻¹(π_λ)/β − α*", spec.md §4.5).
func EvalBonusBase(alpkt, beta, piLambda, piMu float64) (bonus, base float64) {
	bonus = inverseSigmoidOverBeta(piLambda, beta) - alpkt
	base = inverseSigmoidOverBeta(piMu, beta) - alpkt
	return bonus, base
}

// sigmoidContinuityCutoff is the threshold from spec.md Open Question 2:
// "(|α|+|x̄|)·β = 10" is where EvalWithBonus switches from the closed-form
// stable formulation to direct saturation.
const sigmoidContinuityCutoff = 10.0

// EvalWithBonus evaluates the closed-form expression of spec.md §4.5 at
// xbar:
//
//	1 - log(sigma(alpkt,beta,xbar) / sigma(alpkt,beta,0)) / (beta*xbar)
//
// when (|alpkt|+|xbar|)*beta < 10 and xbar != 0; it returns
// sigma(beta*alpkt) when xbar == 0, and saturates to 0 or 1 otherwise (sign
// of alpkt decides which extreme).
func EvalWithBonus(alpkt, beta, xbar float64) float64 {
	if xbar == 0 {
		return Sigmoid(alpkt, beta, 0)
	}
	if (math.Abs(alpkt)+math.Abs(xbar))*beta < sigmoidContinuityCutoff {
		num := Sigmoid(alpkt, beta, xbar)
		den := Sigmoid(alpkt, beta, 0)
		return 1 - math.Log(num/den)/(beta*xbar)
	}
	if alpkt >= 0 {
		return 1
	}
	return 0
}

// AgentEval averages EvalWithBonus at the base and bonus offsets, per
// spec.md: "agent_eval = average of sigma(beta*(alpkt-x)) for x in
// [eval_base, eval_bonus]".
func AgentEval(alpkt, beta, evalBase, evalBonus float64) float64 {
	return (EvalWithBonus(alpkt, beta, evalBase) + EvalWithBonus(alpkt, beta, evalBonus)) / 2
}

// ValueOnlyEvals returns the degenerate SAI evaluation when the network has
// no score head: eval_bonus = eval_base = 0, agent_eval = net_eval = value.
func ValueOnlyEvals(value float64) (agentEval, evalBonus, evalBase float64) {
	return value, 0, 0
}
