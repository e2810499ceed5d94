// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file and SHORTLIST_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory screening queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of screening workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the set of remembered upload keys.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxUploadMB caps the multipart body accepted by the upload endpoints.
	MaxUploadMB int `koanf:"max_upload_mb"`

	// ShortlistThreshold is the minimum number of matched skills to shortlist a CV.
	ShortlistThreshold int `koanf:"shortlist_threshold"`

	// TopN is the default number of candidates kept per job.
	TopN int `koanf:"top_n"`

	// MaxShortlistLimit caps GET /shortlist?limit.
	MaxShortlistLimit int `koanf:"max_shortlist_limit"`

	// ShortlistDir receives copies of shortlisted CVs.
	ShortlistDir string `koanf:"shortlist_dir"`

	// RequiredSkills maps job ids to the skills a CV is scored against.
	RequiredSkills map[string][]string `koanf:"required_skills"`

	// Google holds the optional Sheets and Drive integration.
	Google Google `koanf:"google"`
}

// Google configures the Sheets and Drive adapters. Everything is disabled
// while CredentialsPath is empty.
type Google struct {
	CredentialsPath string `koanf:"credentials_path"`
	SheetID         string `koanf:"sheet_id"`
	ResponsesRange  string `koanf:"responses_range"`
	ResultsRange    string `koanf:"results_range"`
	DriveFolderID   string `koanf:"drive_folder_id"`
	UploadToDrive   bool   `koanf:"upload_to_drive"`
}

// Enabled reports whether Google credentials are configured.
func (g Google) Enabled() bool { return g.CredentialsPath != "" }

// SheetsEnabled reports whether the sheet source and sink can be used.
func (g Google) SheetsEnabled() bool { return g.Enabled() && g.SheetID != "" }

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          1_000,
		WorkerCount:        runtime.NumCPU() * 2,
		DedupeSize:         10_000,
		MaxUploadMB:        32,
		ShortlistThreshold: 3,
		TopN:               5,
		MaxShortlistLimit:  100,
		ShortlistDir:       "shortlisted_cvs",
		RequiredSkills:     DefaultRequiredSkills(),
		Google: Google{
			ResponsesRange: "Form Responses 1",
			ResultsRange:   "Results!A:F",
			UploadToDrive:  true,
		},
	}
}

// DefaultRequiredSkills returns the built-in job catalogue.
func DefaultRequiredSkills() map[string][]string {
	return map[string][]string{
		"1021":      {"python", "flask", "api", "sql", "git"},
		"job_id_2":  {"javascript", "react", "html", "css", "node"},
		"developer": {"python", "javascript", "api", "git", "sql"},
		"designer":  {"figma", "ui", "ux", "adobe", "design"},
	}
}
