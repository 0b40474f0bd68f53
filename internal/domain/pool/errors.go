package pool

import "errors"

// Sentinel kinds for pool generation errors.
var (
	ErrInvalidPoolSize = errors.New("pool size must be at least 1")
)
