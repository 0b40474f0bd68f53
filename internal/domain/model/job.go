package model

import "time"

// PredictionJob is the unit of work flowing through the queue to the
// engine workers. RequestID doubles as the idempotency key.
type PredictionJob struct {
	RequestID  string
	Vector     ProbabilityVector
	NumTickets int
	PoolSize   int
	EnqueuedAt time.Time
}
