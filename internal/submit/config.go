// Package submit is a command line client for the upload endpoint. It posts
// the same multipart form the upload page sends and prints the results the
// way the page renders them.
package submit

import (
	"errors"
	"time"
)

// Errors returned by the client.
var (
	ErrNoFiles   = errors.New("no cv files given")
	ErrNoJobID   = errors.New("job id is required")
	ErrStatus    = errors.New("unexpected response status")
	ErrTransport = errors.New("request failed")
)

// Config holds configuration for one submission.
type Config struct {
	BaseURL string        // Base URL of the service
	JobID   string        // Job the CVs are screened against
	Files   []string      // CV paths
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Enable debug logging
}

// Result is the part of a screening result the client renders.
type Result struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Shortlisted bool   `json:"shortlisted"`
	Duplicate   bool   `json:"duplicate,omitempty"`
	Error       string `json:"error,omitempty"`
}
