package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/meritboard/merit/internal/domain/event"
	"github.com/meritboard/merit/internal/domain/module"
	"github.com/meritboard/merit/pkg/logger"
)

// Router executes every registered chain against an incoming envelope.
// Chains are independent, so they run concurrently; within one chain the
// modules stay strictly sequential.
type Router struct {
	registry *Registry
	logger   logger.Logger
}

// RouterOption applies a configuration option to the Router.
type RouterOption func(*Router)

// WithLogger sets a custom logger for the router.
func WithLogger(l logger.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRouter creates a router over the given registry.
func NewRouter(registry *Registry, opts ...RouterOption) *Router {
	r := &Router{registry: registry}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route runs all registered chains concurrently against the envelope and
// joins on completion of all of them, returning one result per chain.
// Chain errors are joined and returned alongside the results of the
// chains that succeeded. Zero registered chains is a warning condition,
// not a failure.
func (r *Router) Route(ctx context.Context, e event.Envelope) (map[string]module.Result, error) {
	names := r.registry.Names()
	if len(names) == 0 {
		if r.logger != nil {
			r.logger.Warn(ctx, "no chains registered", logger.String("eventType", e.Type))
		}
		return map[string]module.Result{}, nil
	}

	type outcome struct {
		name   string
		result module.Result
		err    error
	}

	var wg sync.WaitGroup
	outcomes := make([]outcome, len(names))
	for i, name := range names {
		c, ok := r.registry.Get(name)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, c *Chain) {
			defer wg.Done()
			res, err := c.Execute(ctx, e)
			outcomes[i] = outcome{name: c.Name(), result: res, err: err}
		}(i, c)
	}
	wg.Wait()

	results := make(map[string]module.Result, len(names))
	var errs []error
	for _, o := range outcomes {
		if o.name == "" {
			continue
		}
		if o.err != nil {
			errs = append(errs, fmt.Errorf("route event %q: %w", e.ID, o.err))
			continue
		}
		results[o.name] = o.result
	}
	return results, errors.Join(errs...)
}
