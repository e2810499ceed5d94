package google

import "errors"

// Sentinel errors for the Google adapters.
var (
	// ErrDisabled is returned when no credentials are configured.
	ErrDisabled = errors.New("google integration disabled")
	// ErrInvalidLink is returned when a Drive file id cannot be found in a link.
	ErrInvalidLink = errors.New("invalid drive link")
	// ErrDownload wraps Drive media download failures.
	ErrDownload = errors.New("drive download failed")
	// ErrUpload wraps Drive file creation failures.
	ErrUpload = errors.New("drive upload failed")
	// ErrSheet wraps Sheets read and append failures.
	ErrSheet = errors.New("sheets request failed")
)
