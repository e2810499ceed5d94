// Package google talks to Google Sheets and Google Drive for the screening
// pipeline: candidate rows come from a form responses sheet, CVs are
// downloaded from and uploaded to Drive, and results are appended to a
// results sheet.
package google

import (
	"context"
	"io"

	"github.com/okian/shortlist/internal/domain/model"
)

// CandidateSource lists candidates waiting to be screened.
type CandidateSource interface {
	FetchCandidates(ctx context.Context) ([]model.Candidate, error)
}

// ResultSink records screening results outside the service.
type ResultSink interface {
	AppendResult(ctx context.Context, r model.Result) error
}

// Files downloads and uploads CV documents.
type Files interface {
	Download(ctx context.Context, link string) ([]byte, error)
	Upload(ctx context.Context, name string, content io.Reader) (Uploaded, error)
}

// Uploaded identifies a file created on Drive.
type Uploaded struct {
	ID      string
	WebLink string
}

const (
	serviceSheets = "sheets"
	serviceDrive  = "drive"

	// maxDownloadBytes bounds a single CV download.
	maxDownloadBytes = 32 << 20
)
