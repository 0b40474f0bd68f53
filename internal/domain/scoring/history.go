package scoring

import "github.com/oddsmith/powerpick/internal/domain/model"

// recentWindow is how many of the most recent draws feed the recency
// penalty.
const recentWindow = 10

// HistoryView is a precomputed read-only view over the historical draw
// dataset: occurrence counts per number plus membership in the recent
// window. Building it once per engine run keeps per-candidate scoring
// O(1) in the history size.
type HistoryView struct {
	totalDraws  int
	whiteCounts [model.WhiteBallMax + 1]int
	pbCounts    [model.PowerballMax + 1]int
	recentWhite [model.WhiteBallMax + 1]bool
	recentPB    [model.PowerballMax + 1]bool
}

// NewHistoryView builds a view over the ordered draw history. The last
// entries of the slice are treated as the most recent draws.
func NewHistoryView(draws []model.HistoricalDraw) *HistoryView {
	v := &HistoryView{totalDraws: len(draws)}

	for _, d := range draws {
		for _, n := range d.WhiteBalls {
			if n >= 1 && n <= model.WhiteBallMax {
				v.whiteCounts[n]++
			}
		}
		if d.Powerball >= 1 && d.Powerball <= model.PowerballMax {
			v.pbCounts[d.Powerball]++
		}
	}

	recentStart := len(draws) - recentWindow
	if recentStart < 0 {
		recentStart = 0
	}
	for _, d := range draws[recentStart:] {
		for _, n := range d.WhiteBalls {
			if n >= 1 && n <= model.WhiteBallMax {
				v.recentWhite[n] = true
			}
		}
		if d.Powerball >= 1 && d.Powerball <= model.PowerballMax {
			v.recentPB[d.Powerball] = true
		}
	}

	return v
}

// Empty reports whether the view was built over zero draws.
func (v *HistoryView) Empty() bool {
	return v == nil || v.totalDraws == 0
}

// TotalDraws returns the number of draws behind the view.
func (v *HistoryView) TotalDraws() int {
	if v == nil {
		return 0
	}
	return v.totalDraws
}
