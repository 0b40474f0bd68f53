package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidLimit   = errors.New("invalid ticket limit")
	ErrResultNotFound = errors.New("result not found")
)
