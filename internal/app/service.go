// Package app assembles the scoring pipeline: filters and scorers into
// chains, chains into the router, and the queue/worker machinery around
// them.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/meritboard/merit/internal/adapters/mq/queue"
	"github.com/meritboard/merit/internal/adapters/mq/worker"
	"github.com/meritboard/merit/internal/adapters/repository"
	"github.com/meritboard/merit/internal/config"
	"github.com/meritboard/merit/internal/domain/chain"
	"github.com/meritboard/merit/internal/domain/dedupe"
	"github.com/meritboard/merit/internal/domain/event"
	"github.com/meritboard/merit/internal/domain/filter"
	"github.com/meritboard/merit/internal/domain/module"
	"github.com/meritboard/merit/internal/domain/pipeline"
	"github.com/meritboard/merit/internal/domain/scoring"
	"github.com/meritboard/merit/pkg/logger"
	"github.com/meritboard/merit/pkg/metrics"
)

// QualityChainName is the chain the service registers at startup.
const QualityChainName = "quality"

// Service implements the dependencies required by the HTTP API.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	ranking  repository.Store
	deduper  dedupe.Deduper
	queue    queue.Queue
	registry *chain.Registry
	router   *chain.Router
	pool     *worker.Pool

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the full service configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{cfg: config.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds and launches the pipeline components. Invalid filter or
// scorer configuration fails here, never per event.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scoring service")

	deduper, err := dedupe.NewLRUDeduper(dedupe.WithMaxEntries(s.cfg.DedupeSize))
	if err != nil {
		return fmt.Errorf("build deduper: %w", err)
	}
	s.deduper = deduper
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.QueueSize))
	s.ranking = repository.NewShardStore(repository.WithShardCount(s.cfg.ShardCount))

	registry, err := s.buildRegistry()
	if err != nil {
		return fmt.Errorf("build chains: %w", err)
	}
	s.registry = registry
	s.router = chain.NewRouter(registry, chain.WithLogger(s.logger.Named("router")))

	s.pool = worker.NewPool(s.cfg.WorkerCount, s.queue, s.router, s.ranking)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.cfg.WorkerCount),
		logger.Int("queueSize", s.cfg.QueueSize),
		logger.Int("chains", registry.Len()),
	)
	return nil
}

// buildRegistry constructs the quality chain from configuration.
func (s *Service) buildRegistry() (*chain.Registry, error) {
	botDetector := filter.NewBotDetector(
		filter.WithBotNames(s.cfg.BotNames...),
		filter.WithAllowlist(s.cfg.AllowedBots...),
	)
	commandDetector := filter.NewCommandDetector(
		filter.WithCommandPrefix(s.cfg.CommandPrefix),
	)
	contentFilter, err := filter.NewContentFilter(
		filter.WithMinLength(s.cfg.MinContentLength),
		filter.WithBotExclusion(s.cfg.ExcludeBots),
		filter.WithExcludedUsers(s.cfg.ExcludedUsers...),
		filter.WithPatterns(s.cfg.FilterPatterns...),
	)
	if err != nil {
		return nil, err
	}

	aggregator, err := scoring.NewAggregator(
		scoring.WithStrategy(scoring.Strategy(s.cfg.Strategy)),
		scoring.WithWeightedScorer(scoring.NewReadabilityScorer(
			scoring.WithReadabilityTarget(s.cfg.ReadabilityTarget),
		), s.cfg.ReadabilityWeight),
		scoring.WithWeightedScorer(scoring.NewTechnicalScorer(
			scoring.WithSubMetricWeights(s.cfg.CodeWeight, s.cfg.TermWeight, s.cfg.ExplanationWeight),
		), s.cfg.TechnicalWeight),
	)
	if err != nil {
		return nil, err
	}
	scoringModule, err := pipeline.NewScoringModule(aggregator)
	if err != nil {
		return nil, err
	}

	quality, err := chain.New(QualityChainName,
		botDetector,
		commandDetector,
		contentFilter,
		scoringModule,
	)
	if err != nil {
		return nil, err
	}

	registry := chain.NewRegistry()
	if err := registry.Register(quality); err != nil {
		return nil, err
	}
	return registry, nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping scoring service")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if s.ranking != nil {
		_ = s.ranking.Close()
	}

	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
}

// SeenAndRecord atomically checks whether an envelope id was seen and
// records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an envelope id from the seen set so it can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of tracked envelope ids.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits an envelope for asynchronous processing. Returns
// false on backpressure.
func (s *Service) Enqueue(ctx context.Context, e event.Envelope) bool {
	ok := s.queue.Enqueue(ctx, e)
	if ok {
		metrics.RecordEventIngested()
	} else {
		metrics.RecordEventRejected()
	}
	return ok
}

// Process routes an envelope synchronously through all chains. Used by
// callers that need the result inline rather than via the ranking store.
func (s *Service) Process(ctx context.Context, e event.Envelope) (map[string]module.Result, error) {
	return s.router.Route(ctx, e)
}

// TopN returns the top n ranking entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.ranking.TopN(ctx, n)
}

// Rank returns the ranking entry for one contributor.
func (s *Service) Rank(ctx context.Context, contributor string) (repository.Entry, error) {
	return s.ranking.Rank(ctx, contributor)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.cfg.WorkerCount,
		"queueSize":   s.cfg.QueueSize,
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		metrics.UpdateQueueSize(queueLen)
		stats["queueLength"] = queueLen
		stats["contributors"] = s.ranking.Count(ctx)
		stats["chains"] = s.registry.Names()
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}
