// Package model contains domain models passed between layers.
package model

import "fmt"

// Powerball matrix bounds.
const (
	WhiteBallCount = 5  // white balls per ticket
	WhiteBallMax   = 69 // white balls are drawn from [1,69]
	PowerballMax   = 26 // powerballs are drawn from [1,26]
)

// Candidate is one unscored proposed ticket: five distinct ascending
// white balls plus a powerball. It is a value type; two candidates are
// equal iff their white-ball tuples and powerballs are equal.
type Candidate struct {
	WhiteBalls [WhiteBallCount]int `json:"white_balls"`
	Powerball  int                 `json:"powerball"`
}

// Validate checks the matrix invariants: five strictly ascending white
// balls in [1,69] and a powerball in [1,26].
func (c Candidate) Validate() error {
	for i, n := range c.WhiteBalls {
		if n < 1 || n > WhiteBallMax {
			return fmt.Errorf("white ball %d out of range [1,%d]: %w", n, WhiteBallMax, ErrInvalidCandidate)
		}
		if i > 0 && n <= c.WhiteBalls[i-1] {
			return fmt.Errorf("white balls must be strictly ascending: %w", ErrInvalidCandidate)
		}
	}
	if c.Powerball < 1 || c.Powerball > PowerballMax {
		return fmt.Errorf("powerball %d out of range [1,%d]: %w", c.Powerball, PowerballMax, ErrInvalidCandidate)
	}
	return nil
}

// Key returns the canonical string form of the ticket, e.g.
// "03-17-24-45-61+09". Used for pool dedupe and as the ticket store id.
func (c Candidate) Key() string {
	w := c.WhiteBalls
	return fmt.Sprintf("%02d-%02d-%02d-%02d-%02d+%02d", w[0], w[1], w[2], w[3], w[4], c.Powerball)
}

// Sum returns the sum of the white balls.
func (c Candidate) Sum() int {
	total := 0
	for _, n := range c.WhiteBalls {
		total += n
	}
	return total
}

// Spread returns max white ball minus min white ball.
func (c Candidate) Spread() int {
	return c.WhiteBalls[WhiteBallCount-1] - c.WhiteBalls[0]
}

// LowCount returns how many white balls fall in the low band (<= 23).
func (c Candidate) LowCount() int {
	count := 0
	for _, n := range c.WhiteBalls {
		if n <= LowBandMax {
			count++
		}
	}
	return count
}

// Band boundaries partitioning [1,69] into low/mid/high thirds.
const (
	LowBandMax = 23
	MidBandMax = 46
)
