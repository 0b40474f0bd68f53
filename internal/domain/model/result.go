package model

import "time"

// Criterion weights for the total score. These are a fixed contract;
// do not tune them without product guidance.
const (
	ProbabilityWeight  = 0.40
	DiversityWeight    = 0.25
	HistoricalWeight   = 0.20
	RiskAdjustedWeight = 0.15
)

// ScoreBreakdown holds the four sub-scores and their weighted total.
// Every component lies in [0,1].
type ScoreBreakdown struct {
	Probability  float64 `json:"probability"`
	Diversity    float64 `json:"diversity"`
	Historical   float64 `json:"historical"`
	RiskAdjusted float64 `json:"risk_adjusted"`
	Total        float64 `json:"total"`
}

// WeightedTotal recomputes the declared weighted sum of the sub-scores.
func (b ScoreBreakdown) WeightedTotal() float64 {
	return ProbabilityWeight*b.Probability +
		DiversityWeight*b.Diversity +
		HistoricalWeight*b.Historical +
		RiskAdjustedWeight*b.RiskAdjusted
}

// ScoredCandidate pairs a candidate ticket with its score breakdown.
type ScoredCandidate struct {
	Candidate
	Scores ScoreBreakdown `json:"scores"`
}

// SelectionResult is the engine's output: tickets ordered by selection
// round (rank 1 first) plus generation metadata. Shortfall is zero when
// the requested number of tickets was produced.
type SelectionResult struct {
	RequestID           string            `json:"request_id,omitempty"`
	Tickets             []ScoredCandidate `json:"tickets"`
	CandidatesEvaluated int               `json:"candidates_evaluated"`
	DatasetFingerprint  string            `json:"dataset_fingerprint"`
	GeneratedAt         time.Time         `json:"generated_at"`
	Shortfall           int               `json:"shortfall"`
}
