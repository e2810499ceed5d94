package model

import "time"

// Task is one CV waiting to be screened.
type Task struct {
	ID        string
	Candidate Candidate
	// CV holds the uploaded document. Nil when the CV must be fetched from
	// Candidate.CVLink.
	CV []byte
	// Key is the idempotency key of the upload, empty for sheet rows.
	Key      string
	Enqueued time.Time
	// Reply receives exactly one Result. It must be buffered.
	Reply chan<- Result
}
