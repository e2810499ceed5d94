package config

import (
	"errors"
)

// Sentinel error kinds. Load wraps every failure in one of them.
var (
	// ErrInvalidConfig marks a configuration that loaded but failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file or environment source that could not be read.
	ErrLoadConfig = errors.New("load config failed")
)
