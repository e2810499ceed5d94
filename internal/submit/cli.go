package submit

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/shortlist/pkg/logger"
)

// SetupLogging initializes the logger on stderr so results stay alone on
// stdout.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetOutput(os.Stderr); err != nil {
		return fmt.Errorf("failed to set log output: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// Run submits cfg.Files and renders the results to out.
func Run(ctx context.Context, cfg *Config, out io.Writer, opts ...ClientOption) error {
	files, err := ReadFiles(cfg.Files)
	if err != nil {
		return err
	}
	client := NewClient(cfg.BaseURL, cfg.Timeout, opts...)
	results, err := client.Submit(ctx, cfg.JobID, files)
	if err != nil {
		return err
	}
	return Render(out, results)
}

// ShowHelp prints usage information for the client.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `CV Shortlisting Client
======================

Uploads CVs for a job and prints each candidate's score.

Usage:
  shortlist [options] cv1.pdf [cv2.pdf ...]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -job string
        Job ID the CVs are screened against (required)
  -timeout duration
        HTTP request timeout (default 2m)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  shortlist -job 1021 alice.pdf bob.pdf
  shortlist -url http://localhost:8080 -job developer -verbose cvs/*.pdf
`)
}
