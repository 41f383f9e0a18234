// Package module defines the contract for pipeline modules and the result
// accumulator threaded through a chain.
package module

import (
	"context"

	"github.com/meritboard/merit/internal/domain/event"
)

// Module is a named, pluggable transformation step. Implementations are
// stateless aside from fixed configuration and are shared across events.
//
// Transform must tolerate a partially populated result and degrade
// gracefully on missing payload fields, recording a diagnostic instead
// of failing. A returned error aborts the whole chain, so well-behaved
// modules reserve it for genuinely unrecoverable conditions.
type Module interface {
	// Name returns the module's unique name within a chain.
	Name() string

	// CanProcess reports whether the module applies to the envelope.
	CanProcess(e event.Envelope) bool

	// Transform processes the envelope against the accumulated result and
	// returns the result to hand to the next module.
	Transform(ctx context.Context, e event.Envelope, r Result) (Result, error)
}
