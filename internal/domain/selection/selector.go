// Package selection greedily picks tickets that balance quality against
// mutual dissimilarity.
package selection

import (
	"context"
	"sort"

	"github.com/oddsmith/powerpick/internal/domain/model"
)

// Combined-score weights trading raw quality against novelty from the
// already-selected set. Fixed contract values.
const (
	qualityWeight = 0.7
	noveltyWeight = 0.3
)

// Outcome is an ordered selection: Tickets[0] is the single
// highest-scoring pool member, later ranks trade score against
// dissimilarity. Shortfall is non-zero when the pool ran out before N.
type Outcome struct {
	Tickets   []model.ScoredCandidate
	Shortfall int
}

// Selector chooses N mutually dissimilar tickets from a scored pool.
// The algorithm is deterministic: ties resolve to the earlier pool
// position.
type Selector struct{}

// New creates a selector.
func New() *Selector {
	return &Selector{}
}

// Select picks up to n tickets. Rank 1 is always the maximum-total pool
// member; each following rank maximizes
// 0.7*total + 0.3*min-blended-distance to the selected set. An empty
// pool is a hard failure; a pool smaller than n yields every member
// plus an explicit shortfall.
func (s *Selector) Select(ctx context.Context, scored []model.ScoredCandidate, n int) (Outcome, error) {
	if len(scored) == 0 {
		return Outcome{}, ErrEmptyPool
	}
	if n < 1 {
		return Outcome{}, ErrInvalidTicketCount
	}

	// Stable sort by total descending preserves pool order for ties.
	remaining := make([]model.ScoredCandidate, len(scored))
	copy(remaining, scored)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Scores.Total > remaining[j].Scores.Total
	})

	selected := make([]model.ScoredCandidate, 0, n)
	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	for len(selected) < n && len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		bestIdx := 0
		bestCombined := -1.0
		for i, c := range remaining {
			combined := qualityWeight*c.Scores.Total + noveltyWeight*noveltyFrom(c.Candidate, selected)
			if combined > bestCombined {
				bestCombined = combined
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return Outcome{
		Tickets:   selected,
		Shortfall: n - len(selected),
	}, nil
}

// noveltyFrom is the minimum blended distance from c to any already
// selected ticket.
func noveltyFrom(c model.Candidate, selected []model.ScoredCandidate) float64 {
	minDist := 1.0
	for _, s := range selected {
		if d := blendedDistance(c, s.Candidate); d < minDist {
			minDist = d
		}
	}
	return minDist
}
