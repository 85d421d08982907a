package limiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces callers to at most a given rate, used by the client to
// throttle every outbound call made through one Client.
type RateLimiter struct {
	lim *rate.Limiter
}

var _ Limiter = (*RateLimiter)(nil)

// NewRate returns a Limiter admitting callers at rate r with burst b.
func NewRate(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{lim: rate.NewLimiter(r, b)}
}

// Wait blocks until a token is available. If ctx has a deadline that the
// wait would outlast, it fails at once with the rate package's own error
// instead of blocking until ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}
