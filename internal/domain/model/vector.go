package model

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// simplexTolerance bounds how far a probability vector's sum may drift
// from 1 before it is rejected at the boundary.
const simplexTolerance = 1e-6

// ProbabilityVector carries the per-number probabilities produced by an
// upstream prediction model. Index 0 holds the probability of number 1.
// The engine treats it as an opaque prior and validates only the
// simplex constraint.
type ProbabilityVector struct {
	WhiteBalls [WhiteBallMax]float64 `json:"white_balls"`
	Powerball  [PowerballMax]float64 `json:"powerball"`
}

// Validate enforces the simplex constraint on both sub-vectors:
// non-negative entries summing to 1 within tolerance.
func (v ProbabilityVector) Validate() error {
	if err := checkSimplex(v.WhiteBalls[:], "white ball"); err != nil {
		return err
	}
	return checkSimplex(v.Powerball[:], "powerball")
}

// WhiteProb returns the prior probability of white ball n.
func (v ProbabilityVector) WhiteProb(n int) float64 {
	return v.WhiteBalls[n-1]
}

// PowerballProb returns the prior probability of powerball n.
func (v ProbabilityVector) PowerballProb(n int) float64 {
	return v.Powerball[n-1]
}

func checkSimplex(probs []float64, label string) error {
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return fmt.Errorf("%s probability at index %d is %v: %w", label, i, p, ErrInvalidDistribution)
		}
	}
	sum, _ := stats.Sum(probs)
	if math.Abs(sum-1) > simplexTolerance {
		return fmt.Errorf("%s probabilities sum to %v, want 1: %w", label, sum, ErrInvalidDistribution)
	}
	return nil
}

// UniformVector returns the maximum-entropy prior: every white ball and
// every powerball equally likely. Useful as a fallback and in tests.
func UniformVector() ProbabilityVector {
	var v ProbabilityVector
	for i := range v.WhiteBalls {
		v.WhiteBalls[i] = 1.0 / WhiteBallMax
	}
	for i := range v.Powerball {
		v.Powerball[i] = 1.0 / PowerballMax
	}
	return v
}
