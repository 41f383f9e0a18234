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

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if MERIT_CONFIG is set
//  3. env (prefix MERIT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MERIT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys like MERIT_QUEUE_SIZE map to flat koanf keys (queue_size);
	// underscores are preserved to match the struct tags.
	envProvider := env.Provider("MERIT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "merit_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MinContentLength < 1:
		return fmt.Errorf("%w: min_content_length must be positive", ErrInvalidConfig)
	case c.ReadabilityTarget < 0 || c.ReadabilityTarget > 100:
		return fmt.Errorf("%w: readability_target must be within [0,100]", ErrInvalidConfig)
	}
	switch c.Strategy {
	case "weighted-average", "minimum", "maximum":
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, c.Strategy)
	}
	return nil
}
