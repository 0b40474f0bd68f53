package selection

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/oddsmith/powerpick/internal/domain/model"
)

// Blended-distance weights. Hand-tuned contract values; keep exactly.
const (
	jaccardWeight   = 0.6
	numericWeight   = 0.3
	powerballWeight = 0.1

	sumDistanceScale    = 100
	spreadDistanceScale = 30
)

// blendedDistance measures how dissimilar two tickets are in [0,1]:
// a weighted blend of set overlap, numeric shape distance, and
// powerball gap.
func blendedDistance(a, b model.Candidate) float64 {
	return jaccardWeight*jaccardDistance(a, b) +
		numericWeight*numericDistance(a, b) +
		powerballWeight*math.Abs(float64(a.Powerball-b.Powerball))/model.PowerballMax
}

// jaccardDistance is 1 minus intersection over union of the 6-element
// sets whiteBalls ∪ {powerball}.
func jaccardDistance(a, b model.Candidate) float64 {
	setA := numberSet(a)
	setB := numberSet(b)

	intersection := 0
	for n := range setA {
		if setB[n] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return 1 - float64(intersection)/float64(union)
}

// numericDistance averages three normalized shape deltas: white-ball
// sum, spread, and low-band count.
func numericDistance(a, b model.Candidate) float64 {
	sumDelta := math.Min(1, math.Abs(float64(a.Sum()-b.Sum()))/sumDistanceScale)
	spreadDelta := math.Min(1, math.Abs(float64(a.Spread()-b.Spread()))/spreadDistanceScale)
	lowDelta := math.Abs(float64(a.LowCount()-b.LowCount())) / model.WhiteBallCount

	m, _ := stats.Mean([]float64{sumDelta, spreadDelta, lowDelta})
	return m
}

func numberSet(c model.Candidate) map[int]bool {
	set := make(map[int]bool, model.WhiteBallCount+1)
	for _, n := range c.WhiteBalls {
		set[n] = true
	}
	set[c.Powerball] = true
	return set
}
