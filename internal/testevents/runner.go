package testevents

import (
	"context"
	"fmt"

	"github.com/meritboard/merit/pkg/logger"
)

// Run generates events, submits them, and prints the resulting
// leaderboard.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get().Named("testevents")

	log.Info(ctx, "generating events",
		logger.Int("count", cfg.NumEvents),
		logger.Any("seed", cfg.Seed),
	)
	events := NewGenerator(cfg.Seed).Generate(cfg.NumEvents)

	submitter := NewSubmitter(cfg.BaseURL, cfg.Workers, cfg.Timeout)
	log.Info(ctx, "submitting events",
		logger.String("url", cfg.BaseURL),
		logger.Int("workers", cfg.Workers),
	)
	stats := submitter.Submit(ctx, events)
	log.Info(ctx, "submission complete",
		logger.Any("accepted", stats.Accepted),
		logger.Any("duplicates", stats.Duplicates),
		logger.Any("rejected", stats.Rejected),
		logger.Any("failed", stats.Failed),
	)
	if stats.Failed > 0 {
		return fmt.Errorf("%d submissions failed", stats.Failed)
	}

	entries, err := submitter.Leaderboard(ctx, cfg.TopN)
	if err != nil {
		return fmt.Errorf("read back leaderboard: %w", err)
	}
	for _, e := range entries {
		log.Info(ctx, "leaderboard entry",
			logger.Any("rank", e["rank"]),
			logger.Any("contributor", e["contributor"]),
			logger.Any("score", e["score"]),
		)
	}
	return nil
}
