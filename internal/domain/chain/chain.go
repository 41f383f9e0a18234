// Package chain composes pipeline modules into ordered chains and routes
// envelopes through registered chains.
package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/meritboard/merit/internal/domain/event"
	"github.com/meritboard/merit/internal/domain/module"
	"github.com/meritboard/merit/pkg/metrics"
)

// Chain is a named, immutable ordered list of modules executed
// sequentially per event. Order is semantically significant: later
// modules read flags set by earlier ones.
type Chain struct {
	name    string
	modules []module.Module
}

// New builds a chain from an ordered module list. The name must be
// non-empty and module names must be unique within the chain.
func New(name string, modules ...module.Module) (*Chain, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	seen := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		if m == nil {
			return nil, fmt.Errorf("%w: chain %q", ErrNilModule, name)
		}
		if _, dup := seen[m.Name()]; dup {
			return nil, fmt.Errorf("%w: %q in chain %q", ErrDuplicateModule, m.Name(), name)
		}
		seen[m.Name()] = struct{}{}
	}
	c := &Chain{name: name, modules: make([]module.Module, len(modules))}
	copy(c.modules, modules)
	return c, nil
}

// Name returns the chain's unique name.
func (c *Chain) Name() string {
	return c.name
}

// Modules returns a copy of the ordered module list.
func (c *Chain) Modules() []module.Module {
	out := make([]module.Module, len(c.modules))
	copy(out, c.modules)
	return out
}

// Execute threads one result accumulator through all capable modules in
// order. Each transform completes before the next starts. Modules whose
// capability test rejects the envelope are skipped; zero matching
// modules yields an empty result, not an error. A module error aborts
// the chain.
func (c *Chain) Execute(ctx context.Context, e event.Envelope) (module.Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordChainLatency(c.name, float64(time.Since(start).Milliseconds()))
	}()

	result := module.NewResult()
	for _, m := range c.modules {
		if !m.CanProcess(e) {
			continue
		}
		wasFiltered := result.Filtered()
		next, err := m.Transform(ctx, e, result)
		if err != nil {
			metrics.RecordChainError(c.name)
			return nil, fmt.Errorf("chain %q: module %q: %w", c.name, m.Name(), err)
		}
		if next == nil {
			next = module.NewResult()
		}
		// The filtered flag is sticky across stages.
		if wasFiltered && !next.Filtered() {
			next.Set(module.KeyFiltered, true)
			if reason := result.Reason(); reason != "" && !next.Has(module.KeyReason) {
				next.Set(module.KeyReason, string(reason))
			}
		}
		result = next
	}
	return result, nil
}
