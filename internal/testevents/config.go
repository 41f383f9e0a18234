// Package testevents generates synthetic comment events and submits
// them to a running service for load and correctness checks.
package testevents

import "time"

// Defaults for the harness configuration.
const (
	defaultNumEvents = 1000
	defaultWorkers   = 8
	defaultTopN      = 25
	defaultTimeout   = 30 * time.Second
)

// Config controls a harness run.
type Config struct {
	BaseURL   string
	NumEvents int
	Workers   int
	TopN      int
	Timeout   time.Duration
	Seed      uint64
}

// Option applies a configuration option to the Config.
type Option func(*Config)

// WithBaseURL sets the service base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		if url != "" {
			c.BaseURL = url
		}
	}
}

// WithNumEvents sets how many events to generate.
func WithNumEvents(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.NumEvents = n
		}
	}
}

// WithWorkers sets the number of concurrent submitters.
func WithWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Workers = n
		}
	}
}

// WithTopN sets how many leaderboard entries to fetch afterwards.
func WithTopN(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.TopN = n
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithSeed fixes the generator seed for reproducible runs.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// NewConfig creates a harness config with configuration options.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		BaseURL:   "http://localhost:9080",
		NumEvents: defaultNumEvents,
		Workers:   defaultWorkers,
		TopN:      defaultTopN,
		Timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
