package model

import "errors"

// Sentinel kinds for boundary validation errors.
var (
	ErrInvalidDistribution = errors.New("invalid probability distribution")
	ErrInvalidCandidate    = errors.New("invalid candidate")
)
