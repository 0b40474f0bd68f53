package drawsource

import "errors"

// Sentinel kinds for draw loading errors.
var (
	ErrOpenFile  = errors.New("open draws file failed")
	ErrBadRecord = errors.New("malformed draw record")
)
