package limiter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimiter bounds the number of concurrent holders to a fixed
// capacity, used by the server to admission-control accepted connections.
type ConcurrencyLimiter struct {
	sem *semaphore.Weighted
}

var _ Limiter = (*ConcurrencyLimiter)(nil)

// NewConcurrency returns a Limiter admitting at most n concurrent callers.
// Callers that acquire must call Release when done.
func NewConcurrency(n int64) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{sem: semaphore.NewWeighted(n)}
}

func (l *ConcurrencyLimiter) Wait(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release frees one slot previously acquired via Wait.
func (l *ConcurrencyLimiter) Release() {
	l.sem.Release(1)
}

// TryWait attempts to acquire a slot without blocking, reporting false if
// the limiter is at capacity.
func (l *ConcurrencyLimiter) TryWait() bool {
	return l.sem.TryAcquire(1)
}
