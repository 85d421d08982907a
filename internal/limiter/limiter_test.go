package limiter_test

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"golang.org/x/time/rate"

	"github.com/speedy-rpc/speedygo/internal/limiter"
)

func TestNoneNeverBlocks(t *testing.T) {
	c := qt.New(t)
	c.Assert(limiter.None().Wait(context.Background()), qt.IsNil)
}

func TestNoneReportsCanceledContext(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Assert(limiter.None().Wait(ctx), qt.Equals, context.Canceled)
}

func TestConcurrencyLimiterBoundsAdmission(t *testing.T) {
	c := qt.New(t)
	l := limiter.NewConcurrency(1)

	c.Assert(l.Wait(context.Background()), qt.IsNil)
	c.Assert(l.TryWait(), qt.IsFalse)

	l.Release()
	c.Assert(l.TryWait(), qt.IsTrue)
}

func TestRateLimiterPacesCallers(t *testing.T) {
	c := qt.New(t)
	l := limiter.NewRate(rate.Limit(0.0001), 1)

	c.Assert(l.Wait(context.Background()), qt.IsNil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	c.Assert(l.Wait(ctx), qt.ErrorMatches, `rate: Wait\(n=1\) would exceed context deadline`)
}
