package selection

import "errors"

// Sentinel kinds for selection errors.
var (
	ErrEmptyPool          = errors.New("empty candidate pool")
	ErrInvalidTicketCount = errors.New("ticket count must be at least 1")
)
