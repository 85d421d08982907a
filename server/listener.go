package server

import (
	"context"
	"net"

	"github.com/speedy-rpc/speedygo/internal/limiter"
)

// admissionListener wraps a net.Listener so that Accept blocks once the
// worker-pool's concurrency limit is reached, implementing the bounded
// worker pool from spec.md §4.7/§5 on top of Go's net/http server, which has
// no built-in concurrent-connection cap. A slot is released when the
// accepted connection is closed.
type admissionListener struct {
	net.Listener
	limiter *limiter.ConcurrencyLimiter
	ctx     context.Context
}

// newAdmissionListener wraps ln with an admission cap of n, bounding an
// Accept-loop wait on ctx so it can be released by Stop even when no
// connection is currently at the front of the queue to admit.
func newAdmissionListener(ln net.Listener, n int64, ctx context.Context) *admissionListener {
	return &admissionListener{Listener: ln, limiter: limiter.NewConcurrency(n), ctx: ctx}
}

func (l *admissionListener) Accept() (net.Conn, error) {
	if err := l.limiter.Wait(l.ctx); err != nil {
		return nil, err
	}
	conn, err := l.Listener.Accept()
	if err != nil {
		l.limiter.Release()
		return nil, err
	}
	return &releasingConn{Conn: conn, release: l.limiter.Release}, nil
}

// releasingConn releases its admission slot exactly once, when the
// connection is closed — by the peer, by the handler, or by the server
// during shutdown.
type releasingConn struct {
	net.Conn
	release func()
	done    bool
}

func (c *releasingConn) Close() error {
	err := c.Conn.Close()
	if !c.done {
		c.done = true
		c.release()
	}
	return err
}
