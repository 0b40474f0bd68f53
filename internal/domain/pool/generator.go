// Package pool produces deduplicated candidate ticket pools biased by a
// probability vector.
package pool

import (
	"context"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/oddsmith/powerpick/internal/domain/model"
)

// Default generation configuration constants.
const (
	// DefaultSeed is the fixed seed for the call-scoped random source.
	// Identical inputs must always yield an identical pool.
	DefaultSeed = 42

	defaultAttemptFactor = 3 // attempts budget is attemptFactor * poolSize

	hotWhitePoolSize  = 20 // top white balls by probability
	tailWhitePoolSize = 40 // wider white-ball pool retaining tail diversity
	hotPowerballSize  = 10
	tailPowerballSize = 15

	hotWhiteChance     = 0.70 // chance a draw is restricted to the hot white pool
	hotPowerballChance = 0.80 // chance the powerball comes from its top pool
)

// Pool is an ordered (insertion-order) collection of unique candidates
// plus generation accounting. Shortfall is non-zero when the attempt
// budget ran out before poolSize unique candidates were found.
type Pool struct {
	Candidates []model.Candidate
	Attempts   int
	Shortfall  int
}

// Generator samples candidate tickets using a deterministic per-call
// random source. It is a pure function of its inputs plus the seed and
// is safe for concurrent use.
type Generator struct {
	seed          uint64
	attemptFactor int
}

// New creates a generator with configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		seed:          DefaultSeed,
		attemptFactor: defaultAttemptFactor,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate produces up to poolSize unique candidates biased toward
// higher-probability numbers. The white balls of each draw come from
// the hot pool (top 20 by probability) with 70% chance, else from the
// tail pool (top 40); the powerball comes from its top-10 pool with 80%
// chance, else its top-15 pool. Draws that duplicate an existing pool
// member are rejected. Generation stops after poolSize unique
// candidates or attemptFactor*poolSize attempts, whichever comes first.
func (g *Generator) Generate(ctx context.Context, v model.ProbabilityVector, poolSize int) (Pool, error) {
	if poolSize < 1 {
		return Pool{}, ErrInvalidPoolSize
	}
	if err := v.Validate(); err != nil {
		return Pool{}, err
	}

	src := rand.NewPCG(g.seed, g.seed)
	rng := rand.New(src)

	whiteRanked := rankByProbability(v.WhiteBalls[:])
	pbRanked := rankByProbability(v.Powerball[:])

	hotWhite := whiteRanked[:hotWhitePoolSize]
	tailWhite := whiteRanked[:tailWhitePoolSize]
	hotPB := pbRanked[:hotPowerballSize]
	tailPB := pbRanked[:tailPowerballSize]

	p := Pool{Candidates: make([]model.Candidate, 0, poolSize)}
	seen := make(map[string]struct{}, poolSize)
	maxAttempts := g.attemptFactor * poolSize

	for p.Attempts < maxAttempts && len(p.Candidates) < poolSize {
		if err := ctx.Err(); err != nil {
			return Pool{}, err
		}
		p.Attempts++

		whitePool := tailWhite
		if rng.Float64() < hotWhiteChance {
			whitePool = hotWhite
		}
		pbPool := tailPB
		if rng.Float64() < hotPowerballChance {
			pbPool = hotPB
		}

		whites := drawDistinct(whitePool, v.WhiteBalls[:], model.WhiteBallCount, src, rng)
		pb := drawOne(pbPool, v.Powerball[:], src, rng)

		var c model.Candidate
		copy(c.WhiteBalls[:], whites)
		c.Powerball = pb

		key := c.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		p.Candidates = append(p.Candidates, c)
	}

	p.Shortfall = poolSize - len(p.Candidates)
	return p, nil
}

// rankByProbability orders numbers 1..len(probs) by probability
// descending, breaking ties by number ascending for determinism.
func rankByProbability(probs []float64) []int {
	nums := make([]int, len(probs))
	for i := range nums {
		nums[i] = i + 1
	}
	sort.SliceStable(nums, func(i, j int) bool {
		pi, pj := probs[nums[i]-1], probs[nums[j]-1]
		if pi != pj {
			return pi > pj
		}
		return nums[i] < nums[j]
	})
	return nums
}

// drawDistinct samples k distinct numbers from the restricted pool,
// weighted by their probabilities, and returns them sorted ascending.
// If the weighted sampler exhausts its mass (all-zero tail weights) the
// remaining picks fall back to uniform draws over the unused numbers.
func drawDistinct(numbers []int, probs []float64, k int, src rand.Source, rng *rand.Rand) []int {
	weights := make([]float64, len(numbers))
	for i, n := range numbers {
		weights[i] = probs[n-1]
	}
	w := sampleuv.NewWeighted(weights, src)

	out := make([]int, 0, k)
	taken := make(map[int]struct{}, k)
	for len(out) < k {
		idx, ok := w.Take()
		if !ok {
			break
		}
		out = append(out, numbers[idx])
		taken[idx] = struct{}{}
	}

	// Uniform fallback for degenerate weight vectors.
	for len(out) < k {
		idx := rng.IntN(len(numbers))
		if _, used := taken[idx]; used {
			continue
		}
		taken[idx] = struct{}{}
		out = append(out, numbers[idx])
	}

	sort.Ints(out)
	return out
}

// drawOne samples a single number from the restricted pool, weighted by
// probability, with a uniform fallback.
func drawOne(numbers []int, probs []float64, src rand.Source, rng *rand.Rand) int {
	weights := make([]float64, len(numbers))
	for i, n := range numbers {
		weights[i] = probs[n-1]
	}
	w := sampleuv.NewWeighted(weights, src)
	if idx, ok := w.Take(); ok {
		return numbers[idx]
	}
	return numbers[rng.IntN(len(numbers))]
}
