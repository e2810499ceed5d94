package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "SHORTLIST_"
	envFileVar = envPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SHORTLIST_CONFIG is set
//  3. env (prefix SHORTLIST_, SHORTLIST_GOOGLE_* maps to google.*)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	// A configured catalogue replaces the default jobs instead of merging
	// into them.
	if k.Exists("required_skills") {
		cfg.RequiredSkills = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps SHORTLIST_QUEUE_SIZE -> queue_size and
// SHORTLIST_GOOGLE_SHEET_ID -> google.sheet_id.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(s, "google_"); ok {
		return "google." + rest
	}
	return s
}

// Validate checks the invariants the service relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ShortlistDir) == "":
		return fmt.Errorf("%w: shortlist_dir must not be empty", ErrInvalidConfig)
	case c.TopN < 1:
		return fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	case c.ShortlistThreshold < 0:
		return fmt.Errorf("%w: shortlist_threshold must not be negative", ErrInvalidConfig)
	case c.MaxUploadMB < 1:
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	}
	return nil
}
