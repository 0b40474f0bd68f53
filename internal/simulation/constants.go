package simulation

import "time"

// HTTP status code constants.
const (
	StatusOK              = 200
	StatusAccepted        = 202
	StatusTooManyRequests = 429
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	ProcessingDelay      = 2 * time.Second
	PercentageMultiplier = 100
)

// Wire contract constants for a candidate ticket.
const (
	WhiteBallCount   = 5
	WhiteBallRange   = 69
	PowerballRange   = 26
	WhiteProbLen     = 69
	PowerballProbLen = 26
)
