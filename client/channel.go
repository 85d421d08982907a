// Package client implements the transport channel (C4) and the client
// proxy (C8/C8'): a typed-language rearchitecture of the source's dynamic
// attribute interception into explicit call sites, per spec.md §9.
package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/speedy-rpc/speedygo/errs"
)

// Channel owns one endpoint's HTTP connection(s), reused across calls via
// the underlying http.Client's keep-alive transport. A Channel is
// single-owner: concurrent use from multiple goroutines requires either
// external synchronization or one Channel per goroutine, per spec.md §5.
type Channel struct {
	endpoint   string
	httpClient *http.Client
	clock      clock.Clock
}

// NewChannel returns a Channel to endpoint (host:port, no scheme).
func NewChannel(endpoint string, opts ...ChannelOption) *Channel {
	c := &Channel{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		clock:      clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithHTTPClient overrides the underlying *http.Client, e.g. to share a
// transport across many Channels.
func WithHTTPClient(hc *http.Client) ChannelOption {
	return func(c *Channel) { c.httpClient = hc }
}

// WithClock overrides the Channel's clock, for tests that want to control
// timeout expiry deterministically instead of sleeping on a wall clock.
func WithClock(clk clock.Clock) ChannelOption {
	return func(c *Channel) { c.clock = clk }
}

// Endpoint returns the (host:port) this Channel posts to.
func (c *Channel) Endpoint() string { return c.endpoint }

// Post sends body to path and returns the response status and body.
// Connect, write, read, and non-200-status failures are all surfaced as a
// single TransportError carrying the endpoint and the underlying cause,
// per spec.md §4.4. Post does not retry and does not parse the body.
func (c *Channel) Post(ctx context.Context, path string, body []byte) (status int, respBody []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, c.transportErr(err, "build request to %s", path)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.transportErr(err, "request to %s", path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, c.transportErr(err, "read response from %s", path)
	}
	return resp.StatusCode, data, nil
}

// PostWithTimeout is like Post but fails with a TransportError if no
// response arrives within timeout. A non-positive timeout means no limit.
// The deadline is measured against the Channel's clock rather than
// context.WithTimeout's wall clock, so Mock-clock tests can advance it
// deterministically instead of sleeping.
func (c *Channel) PostWithTimeout(ctx context.Context, path string, body []byte, timeout time.Duration) (int, []byte, error) {
	if timeout <= 0 {
		return c.Post(ctx, path, body)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		status int
		body   []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		status, body, err := c.Post(ctx, path, body)
		done <- result{status, body, err}
	}()

	timer := c.clock.Timer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.status, r.body, r.err
	case <-timer.C:
		cancel()
		return 0, nil, errs.B().Code(errs.TransportError).
			Meta("endpoint", c.endpoint, "timeout", timeout.String()).
			Msgf("call to %s timed out after %s", c.endpoint, timeout).Err()
	}
}

func (c *Channel) transportErr(cause error, format string, args ...interface{}) error {
	return errs.B().Code(errs.TransportError).
		Cause(cause).
		Meta("endpoint", c.endpoint).
		Msgf(format, args...).Err()
}
