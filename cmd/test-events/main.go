package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/meritboard/merit/internal/testevents"
	"github.com/meritboard/merit/pkg/logger"
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numEvents = flag.Int("events", 1000, "Number of events to generate and submit")
		workers   = flag.Int("workers", 8, "Number of concurrent submitters")
		topN      = flag.Int("top", 25, "Number of leaderboard entries to fetch")
		timeout   = flag.Duration("timeout", 30*time.Second, "HTTP request timeout")
		seed      = flag.Uint64("seed", 0, "Generator seed (0 = random)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg := testevents.NewConfig(
		testevents.WithBaseURL(*baseURL),
		testevents.WithNumEvents(*numEvents),
		testevents.WithWorkers(*workers),
		testevents.WithTopN(*topN),
		testevents.WithTimeout(*timeout),
		testevents.WithSeed(*seed),
	)

	if err := testevents.Run(context.Background(), cfg); err != nil {
		logger.Get().Error(context.Background(), "test run failed", logger.Error(err))
		os.Exit(1)
	}
}
