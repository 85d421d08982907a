// Package limiter provides the admission-control primitives the server uses
// to bound concurrently accepted connections and the client uses to bound
// outbound call rate.
package limiter

import "context"

// Limiter gates entry to a critical section. Wait blocks until the caller
// may proceed, or returns ctx.Err() if ctx is done first.
type Limiter interface {
	Wait(ctx context.Context) error
}

// None returns a Limiter that never blocks.
func None() Limiter { return noopLimiter{} }
