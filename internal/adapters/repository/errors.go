package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("candidate not found")
	ErrInvalidLimit  = errors.New("invalid shortlist limit")
	ErrInvalidResult = errors.New("result has no job id or name")
)
