package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrMissingJobID   = errors.New("job id is required")
	ErrNoUploads      = errors.New("no cv files uploaded")
	ErrSheetDisabled  = errors.New("candidate sheet is not configured")
	ErrNoCandidates   = errors.New("no candidates found in sheet")
	ErrBackpressure   = errors.New("screening queue is full")
	ErrNothingToRank  = errors.New("no shortlisted candidates for job")
	ErrFilesDisabled  = errors.New("drive integration is not configured")
	ErrInvalidLimit   = errors.New("invalid shortlist limit")
	ErrCandidateFetch = errors.New("fetch candidates")
)
