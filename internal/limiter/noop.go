package limiter

import (
	"context"
)

// noopLimiter is the Limiter a Client defaults to when no call-admission
// policy is configured: every Proxy and Stub call passes straight through,
// matching the default unlimited RMI/typed-message call rate spec.md §4.8
// describes.
type noopLimiter struct{}

var _ Limiter = noopLimiter{}

func (n noopLimiter) Wait(ctx context.Context) error {
	// We return the context error here, so if the context was cancelled, we'll
	// behave the same as a rate limiter would.
	return ctx.Err()
}
