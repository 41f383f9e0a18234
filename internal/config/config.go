// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() defaults and Load(ctx) layering file and env on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory envelope queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of pipeline workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the envelope-id idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures lock striping in the ranking store.
	ShardCount int `koanf:"shard_count"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// MinContentLength is the shortest content considered substantive.
	MinContentLength int `koanf:"min_content_length"`

	// ExcludeBots toggles the content filter's bot-author rule.
	ExcludeBots bool `koanf:"exclude_bots"`

	// BotNames are automation account names matched as substrings.
	BotNames []string `koanf:"bot_names"`

	// AllowedBots are usernames never classified as bots.
	AllowedBots []string `koanf:"allowed_bots"`

	// ExcludedUsers are authors whose content is always rejected.
	ExcludedUsers []string `koanf:"excluded_users"`

	// FilterPatterns are case-insensitive content rejection patterns.
	FilterPatterns []string `koanf:"filter_patterns"`

	// CommandPrefix marks slash commands, e.g. "/".
	CommandPrefix string `koanf:"command_prefix"`

	// ReadabilityTarget is the reading-ease value scored as 1.0.
	ReadabilityTarget float64 `koanf:"readability_target"`

	// ReadabilityWeight and TechnicalWeight weight the two scorers in
	// the aggregator.
	ReadabilityWeight float64 `koanf:"readability_weight"`
	TechnicalWeight   float64 `koanf:"technical_weight"`

	// CodeWeight, TermWeight, and ExplanationWeight weight the technical
	// scorer's sub-metrics.
	CodeWeight        float64 `koanf:"code_weight"`
	TermWeight        float64 `koanf:"term_weight"`
	ExplanationWeight float64 `koanf:"explanation_weight"`

	// Strategy selects score aggregation: weighted-average, minimum, maximum.
	Strategy string `koanf:"strategy"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 4,
		DedupeSize:          500_000,
		ShardCount:          8,
		MaxLeaderboardLimit: 100,
		MinContentLength:    10,
		ExcludeBots:         true,
		BotNames:            []string{"dependabot", "renovate", "github-actions"},
		CommandPrefix:       "/",
		ReadabilityTarget:   60,
		ReadabilityWeight:   0.6,
		TechnicalWeight:     0.4,
		CodeWeight:          0.4,
		TermWeight:          0.3,
		ExplanationWeight:   0.3,
		Strategy:            "weighted-average",
	}
}
