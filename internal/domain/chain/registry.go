package chain

import (
	"fmt"
	"sync"
)

// Registry stores chains by unique name. Chains are registered once at
// startup; reads afterwards are concurrent.
type Registry struct {
	mu     sync.RWMutex
	chains map[string]*Chain
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{chains: make(map[string]*Chain)}
}

// Register adds a chain. Registering a second chain under the same name
// is an error.
func (r *Registry) Register(c *Chain) error {
	if c == nil {
		return fmt.Errorf("%w: nil chain", ErrDuplicateChain)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.chains[c.Name()]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateChain, c.Name())
	}
	r.chains[c.Name()] = c
	r.order = append(r.order, c.Name())
	return nil
}

// Get returns the chain registered under name.
func (r *Registry) Get(name string) (*Chain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chains[name]
	return c, ok
}

// Names returns chain names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered chains.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chains)
}
