// Package repository defines the ranked ticket store interface and
// errors.
package repository

import (
	"context"

	"github.com/oddsmith/powerpick/internal/domain/model"
)

// Entry is one ranked ticket row: the canonical ticket key, its best
// observed total score with the full breakdown behind it, and the
// request that produced it.
type Entry struct {
	Rank       int                       `json:"rank"`
	Key        string                    `json:"key"`
	WhiteBalls [model.WhiteBallCount]int `json:"white_balls"`
	Powerball  int                       `json:"powerball"`
	Score      float64                   `json:"score"`
	Breakdown  model.ScoreBreakdown      `json:"breakdown"`
	RequestID  string                    `json:"request_id"`
}

// Store provides read/write access to the ranked ticket state.
type Store interface {
	// RecordTicket keeps the best observed total for a ticket.
	// Returns true if the store updated the ticket's score.
	RecordTicket(ctx context.Context, t model.ScoredCandidate, requestID string) (bool, error)

	// Rank returns the current rank entry for a ticket key.
	// Returns ErrTicketNotFound if the ticket was never recorded.
	Rank(ctx context.Context, key string) (Entry, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of distinct tickets tracked.
	Count(ctx context.Context) int
}
