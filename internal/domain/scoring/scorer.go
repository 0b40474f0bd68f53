// Package scoring computes multi-criteria quality scores for candidate
// tickets.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/oddsmith/powerpick/internal/domain/model"
)

// Scoring constants. The sub-score formulas and their constants are a
// fixed contract; preserve them exactly.
const (
	whiteProbWeight = 0.8
	pbProbWeight    = 0.2

	partialDiversityScore = 0.5
	maxSpreadForFullScore = 50

	neutralHistorical = 0.5
	recencyPenalty    = 0.3

	fullRunPenalty     = 0.1
	multiplesPenalty   = 0.3
	multiplesBaseMin   = 2
	multiplesBaseMax   = 10
	multiplesThreshold = 4

	sumIdealMin, sumIdealMax = 120, 240
	sumOkMin, sumOkMax       = 100, 260
	sumIdealScore            = 1.0
	sumOkScore               = 0.7
	sumPoorScore             = 0.3

	popularDigitsPenalty = 0.5
	popularDigitsLimit   = 2
)

// popularNumbers are birthday-adjacent picks that crowd prize sharing.
var popularNumbers = map[int]bool{1: true, 7: true, 11: true, 13: true, 21: true, 23: true}

// Scorer computes a ScoreBreakdown for one candidate against a
// probability vector and a historical dataset view. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
	vector  model.ProbabilityVector
	history *HistoryView
}

// New creates a scorer for one engine invocation.
func New(vector model.ProbabilityVector, history *HistoryView) *Scorer {
	if history == nil {
		history = NewHistoryView(nil)
	}
	return &Scorer{vector: vector, history: history}
}

// Score computes the four weighted sub-scores for a candidate. A
// malformed candidate fails with ErrInvalidCandidate; the scorer never
// repairs input.
func (s *Scorer) Score(ctx context.Context, c model.Candidate) (model.ScoreBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return model.ScoreBreakdown{}, fmt.Errorf("scoring cancelled: %w", err)
	}
	if err := c.Validate(); err != nil {
		return model.ScoreBreakdown{}, err
	}

	b := model.ScoreBreakdown{
		Probability:  clamp01(s.probabilityScore(c)),
		Diversity:    clamp01(s.diversityScore(c)),
		Historical:   clamp01(s.historicalScore(c)),
		RiskAdjusted: clamp01(s.riskScore(c)),
	}
	b.Total = b.WeightedTotal()
	return b, nil
}

// probabilityScore blends the mean white-ball prior with the powerball
// prior at 0.8/0.2.
func (s *Scorer) probabilityScore(c model.Candidate) float64 {
	probs := make([]float64, 0, model.WhiteBallCount)
	for _, n := range c.WhiteBalls {
		probs = append(probs, s.vector.WhiteProb(n))
	}
	return whiteProbWeight*mean(probs) + pbProbWeight*s.vector.PowerballProb(c.Powerball)
}

// diversityScore measures the intrinsic shape of the ticket,
// independent of history: parity, band balance, spread and
// consecutiveness.
func (s *Scorer) diversityScore(c model.Candidate) float64 {
	evens := 0
	var bands [3]int
	adjacent := 0
	for i, n := range c.WhiteBalls {
		if n%2 == 0 {
			evens++
		}
		switch {
		case n <= model.LowBandMax:
			bands[0]++
		case n <= model.MidBandMax:
			bands[1]++
		default:
			bands[2]++
		}
		if i > 0 && n-c.WhiteBalls[i-1] == 1 {
			adjacent++
		}
	}

	parity := partialDiversityScore
	if evens == 2 || evens == 3 {
		parity = 1.0
	}

	balance := 1.0
	for _, count := range bands {
		if count > 3 {
			balance = partialDiversityScore
		}
	}

	spread := math.Min(1, float64(c.Spread())/maxSpreadForFullScore)

	consecutive := 1.0
	if adjacent > 1 {
		consecutive = partialDiversityScore
	}

	return mean([]float64{parity, balance, spread, consecutive})
}

// historicalScore compares each number's occurrence count to its
// uniform expectation and penalizes numbers seen in the recent window.
// With no history it is neutral.
func (s *Scorer) historicalScore(c model.Candidate) float64 {
	if s.history.Empty() {
		return neutralHistorical
	}

	total := float64(s.history.TotalDraws())
	expectedWhite := total * model.WhiteBallCount / model.WhiteBallMax
	expectedPB := total / model.PowerballMax

	subScores := make([]float64, 0, 2*(model.WhiteBallCount+1))
	for _, n := range c.WhiteBalls {
		subScores = append(subScores, frequencyScore(float64(s.history.whiteCounts[n]), expectedWhite))
	}
	subScores = append(subScores, frequencyScore(float64(s.history.pbCounts[c.Powerball]), expectedPB))

	for _, n := range c.WhiteBalls {
		subScores = append(subScores, recencyScore(s.history.recentWhite[n]))
	}
	subScores = append(subScores, recencyScore(s.history.recentPB[c.Powerball]))

	return mean(subScores)
}

// riskScore penalizes shapes that either never hit or split prizes
// badly: full runs, near-uniform multiples, extreme sums, and crowded
// popular numbers.
func (s *Scorer) riskScore(c model.Candidate) float64 {
	sequence := 1.0
	if c.Spread() == model.WhiteBallCount-1 {
		sequence = fullRunPenalty // all five form one uninterrupted run
	}

	multiples := 1.0
	for base := multiplesBaseMin; base <= multiplesBaseMax; base++ {
		count := 0
		for _, n := range c.WhiteBalls {
			if n%base == 0 {
				count++
			}
		}
		if count >= multiplesThreshold {
			multiples = multiplesPenalty
			break
		}
	}

	sum := c.Sum()
	sumScore := sumPoorScore
	switch {
	case sum >= sumIdealMin && sum <= sumIdealMax:
		sumScore = sumIdealScore
	case sum >= sumOkMin && sum <= sumOkMax:
		sumScore = sumOkScore
	}

	popular := 0
	for _, n := range c.WhiteBalls {
		if popularNumbers[n] {
			popular++
		}
	}
	popularScore := 1.0
	if popular > popularDigitsLimit {
		popularScore = popularDigitsPenalty
	}

	return mean([]float64{sequence, multiples, sumScore, popularScore})
}

func frequencyScore(actual, expected float64) float64 {
	return math.Max(0, 1-math.Abs(actual-expected)/expected)
}

func recencyScore(recent bool) float64 {
	if recent {
		return recencyPenalty
	}
	return 1.0
}

func mean(vals []float64) float64 {
	m, _ := stats.Mean(vals)
	return m
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
