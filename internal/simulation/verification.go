package simulation

import (
	"context"
	"fmt"
	"log"
	"math"
)

// Published scoring contract: the weighted total must equal the sum of
// the four criterion scores under these weights.
const (
	probabilityWeight  = 0.40
	diversityWeight    = 0.25
	historicalWeight   = 0.20
	riskAdjustedWeight = 0.15

	scoreTolerance = 1e-6
)

// Number of board entries to spot-check against the rank endpoint.
const rankSpotChecks = 10

// verifyResults checks the retrieved results and ticket board for
// contract violations: malformed tickets, inconsistent score totals,
// an unsorted board, and rank entries that disagree with the board.
func verifyResults(ctx context.Context, config *Config, results []Result, board []Entry, stats *Stats) error {
	log.Println("Verifying results...")

	if len(results) == 0 {
		return fmt.Errorf("no results to verify")
	}

	badTickets := 0
	badTotals := 0
	for _, result := range results {
		for _, ticket := range result.Tickets {
			if err := validateTicket(ticket.WhiteBalls, ticket.Powerball); err != nil {
				badTickets++
				if config.Verbose {
					log.Printf("Invalid ticket in %s: %v", result.RequestID, err)
				}
				continue
			}
			if !totalConsistent(ticket.Scores) {
				badTotals++
				if config.Verbose {
					log.Printf("Inconsistent total in %s: got %.6f", result.RequestID, ticket.Scores.Total)
				}
			}
		}
	}

	if badTickets > 0 {
		return fmt.Errorf("%d malformed tickets in results", badTickets)
	}
	if badTotals > 0 {
		return fmt.Errorf("%d tickets with inconsistent score totals", badTotals)
	}
	log.Println("All result tickets well-formed with consistent totals")

	if len(board) > 0 {
		if err := verifyBoardOrdering(board); err != nil {
			return fmt.Errorf("ticket board ordering: %w", err)
		}
		log.Println("Ticket board ordering verified")

		if err := spotCheckRanks(ctx, config, board); err != nil {
			log.Printf("Rank spot-check warning: %v", err)
		} else {
			log.Println("Rank entries agree with the board")
		}
	}

	displayTopTickets(board, config.Verbose)

	log.Println("Result verification completed")
	return nil
}

// validateTicket checks a ticket against the game rules: five strictly
// ascending white balls in 1..69 and a powerball in 1..26.
func validateTicket(whiteBalls []int, powerball int) error {
	if len(whiteBalls) != WhiteBallCount {
		return fmt.Errorf("expected %d white balls, got %d", WhiteBallCount, len(whiteBalls))
	}
	for i, n := range whiteBalls {
		if n < 1 || n > WhiteBallRange {
			return fmt.Errorf("white ball %d out of range", n)
		}
		if i > 0 && n <= whiteBalls[i-1] {
			return fmt.Errorf("white balls not strictly ascending at index %d", i)
		}
	}
	if powerball < 1 || powerball > PowerballRange {
		return fmt.Errorf("powerball %d out of range", powerball)
	}
	return nil
}

// totalConsistent reports whether the total matches the weighted sum of
// the criterion scores within tolerance.
func totalConsistent(b Breakdown) bool {
	expected := probabilityWeight*b.Probability +
		diversityWeight*b.Diversity +
		historicalWeight*b.Historical +
		riskAdjustedWeight*b.RiskAdjusted
	return math.Abs(b.Total-expected) <= scoreTolerance
}

// verifyBoardOrdering checks that the board is sorted by score
// descending with contiguous ranks starting at 1.
func verifyBoardOrdering(board []Entry) error {
	for i, entry := range board {
		if entry.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d, want %d", i, entry.Rank, i+1)
		}
		if i > 0 && entry.Score > board[i-1].Score {
			return fmt.Errorf("board not sorted: entry %d outscores entry %d", i, i-1)
		}
		if err := validateTicket(entry.WhiteBalls, entry.Powerball); err != nil {
			return fmt.Errorf("board entry %d: %w", i, err)
		}
	}
	return nil
}

// spotCheckRanks queries the rank endpoint for a handful of board
// entries and checks the answers agree with the board positions.
func spotCheckRanks(ctx context.Context, config *Config, board []Entry) error {
	client := newHTTPClient(config.Timeout)

	checks := rankSpotChecks
	if len(board) < checks {
		checks = len(board)
	}

	for i := 0; i < checks; i++ {
		want := board[i]
		got, err := getRankEntry(ctx, client, config.BaseURL, want.Key)
		if err != nil {
			return fmt.Errorf("rank lookup for %s failed: %w", want.Key, err)
		}
		if got.Rank != want.Rank {
			return fmt.Errorf("rank mismatch for %s: board says %d, endpoint says %d",
				want.Key, want.Rank, got.Rank)
		}
		if math.Abs(got.Score-want.Score) > scoreTolerance {
			return fmt.Errorf("score mismatch for %s: board says %.6f, endpoint says %.6f",
				want.Key, want.Score, got.Score)
		}
	}

	return nil
}

// displayTopTickets shows the top tickets from the board.
func displayTopTickets(board []Entry, verbose bool) {
	if len(board) == 0 {
		return
	}

	topN := 10
	if len(board) < topN {
		topN = len(board)
	}

	log.Printf("Top %d tickets on the board:", topN)
	for i := 0; i < topN; i++ {
		entry := board[i]
		log.Printf("   %d. %v + PB %d - Score: %.4f", entry.Rank, entry.WhiteBalls, entry.Powerball, entry.Score)
	}

	if verbose {
		avgScore := calculateAverageScore(board)
		maxScore := board[0].Score
		minScore := board[len(board)-1].Score

		log.Printf(`Score statistics:
   Average: %.4f
   Maximum: %.4f
   Minimum: %.4f
`, avgScore, maxScore, minScore)
	}
}

// calculateAverageScore calculates the average score across board entries.
func calculateAverageScore(board []Entry) float64 {
	if len(board) == 0 {
		return 0
	}

	sum := 0.0
	for _, entry := range board {
		sum += entry.Score
	}

	return sum / float64(len(board))
}
