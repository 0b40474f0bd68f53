package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// HistoricalDraw is one past drawing, supplied read-only by an external
// persistence layer. Only the scorer's historical and recency criteria
// look at it.
type HistoricalDraw struct {
	WhiteBalls [WhiteBallCount]int `json:"white_balls"`
	Powerball  int                 `json:"powerball"`
	Date       time.Time           `json:"date"`
}

// Fingerprint computes a deterministic hash over the ordered draw
// history. It is attached to every SelectionResult as a provenance tag
// so identical input datasets are traceably identical across runs.
func Fingerprint(draws []HistoricalDraw) string {
	h := sha256.New()
	for _, d := range draws {
		w := d.WhiteBalls
		fmt.Fprintf(h, "%s|%d,%d,%d,%d,%d|%d\n",
			d.Date.Format("2006-01-02"), w[0], w[1], w[2], w[3], w[4], d.Powerball)
	}
	return hex.EncodeToString(h.Sum(nil))
}
