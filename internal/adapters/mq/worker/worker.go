// Package worker runs envelopes from the queue through the chain router
// and feeds accepted scores into the contributor ranking store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/meritboard/merit/internal/domain/event"
	"github.com/meritboard/merit/internal/domain/module"
	"github.com/meritboard/merit/pkg/logger"
	"github.com/meritboard/merit/pkg/metrics"
)

// Pool shutdown limits.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Router executes all registered chains for an envelope.
type Router interface {
	Route(ctx context.Context, e event.Envelope) (map[string]module.Result, error)
}

// Updater records a contributor's score when it improves their best.
type Updater interface {
	UpdateBest(ctx context.Context, contributor string, score float64) (bool, error)
}

// Queue defines how workers receive envelopes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan event.Envelope
}

// Worker processes envelopes until stopped.
type Worker struct {
	queue   Queue
	router  Router
	updater Updater
	name    string

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName names the worker for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a worker with configuration options.
func NewWorker(queue Queue, router Router, updater Updater, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		router:   router,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	envelopes := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-envelopes:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				metrics.RecordWorkerError()
				w.logger.Error(ctx, "envelope processing failed",
					logger.String("eventID", e.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// signalStop requests the worker loop to exit. Safe to call repeatedly.
func (w *Worker) signalStop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// Shutdown stops the worker, waiting for the current envelope.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.signalStop()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker %s shutdown: %w", w.name, ctx.Err())
	}
}

// process routes one envelope and records the resulting scores.
func (w *Worker) process(ctx context.Context, e event.Envelope) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
	}()

	results, err := w.router.Route(ctx, e)
	if err != nil {
		return fmt.Errorf("route envelope %s: %w", e.ID, err)
	}

	for chainName, r := range results {
		if r.Filtered() || r.IsBot() || !r.Has(module.KeyNormalizedScore) {
			continue
		}
		author := r.Author()
		if author == "" {
			continue
		}
		score := r.Float(module.KeyNormalizedScore) * 100
		improved, err := w.updater.UpdateBest(ctx, author, score)
		if err != nil {
			return fmt.Errorf("update ranking for %q from chain %q: %w", author, chainName, err)
		}
		if improved {
			metrics.RecordRankingUpdate()
		}
	}
	return nil
}

// Pool manages a fixed set of workers.
type Pool struct {
	workers []*Worker

	shutdown chan struct{}
	logger   logger.Logger
}

// NewPool creates a pool of workerCount workers over the shared queue.
func NewPool(workerCount int, queue Queue, router Router, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers:  make([]*Worker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(queue, router, updater,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits briefly for each.
func (p *Pool) Stop() {
	close(p.shutdown)
	for _, w := range p.workers {
		w.signalStop()
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown gracefully stops every worker within the pool timeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.String("worker", w.name))
		}
	}
	return nil
}
