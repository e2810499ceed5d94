// Package repository keeps the best screening result of every candidate,
// ranked per job.
package repository

import (
	"context"

	"github.com/okian/shortlist/internal/domain/model"
)

// Store provides read/write access to screened candidates.
type Store interface {
	// UpdateBest stores r if it beats the candidate's current score for the job.
	// Returns true if the store changed.
	UpdateBest(ctx context.Context, r model.Result) (bool, error)

	// Get returns the stored result of a candidate.
	// Returns ErrNotFound if the candidate is unknown.
	Get(ctx context.Context, jobID, name string) (model.Result, error)

	// Rank returns the position of a candidate within its job.
	// Returns ErrNotFound if the candidate is unknown.
	Rank(ctx context.Context, jobID, name string) (model.Entry, error)

	// TopN returns the best n candidates of a job ordered by score desc, name asc.
	TopN(ctx context.Context, jobID string, n int) ([]model.Entry, error)

	// Count returns the number of candidates across all jobs.
	Count(ctx context.Context) int

	// Jobs returns the ids of jobs with at least one candidate, sorted.
	Jobs(ctx context.Context) []string
}
