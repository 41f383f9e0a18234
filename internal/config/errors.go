package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidConfig marks a loaded configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig marks a failure reading or decoding a config source.
	ErrLoadConfig = errors.New("load config failed")
)
