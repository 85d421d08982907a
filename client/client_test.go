package client_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"golang.org/x/time/rate"

	"github.com/speedy-rpc/speedygo/client"
	"github.com/speedy-rpc/speedygo/message"
	"github.com/speedy-rpc/speedygo/registry"
	"github.com/speedy-rpc/speedygo/server"
)

type innerThing struct{ hits int }

func (t *innerThing) RPCHandlers() registry.Handlers {
	return registry.Handlers{
		"touch": func(ctx context.Context, args []interface{}, kw map[string]interface{}) (interface{}, error) {
			t.hits++
			return float64(t.hits), nil
		},
	}
}

func startTestServer(t *testing.T) string {
	t.Helper()
	c := qt.New(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)

	s := server.New()
	s.RegisterObject("widget", struct{}{}, registry.Handlers{
		"echo": func(ctx context.Context, args []interface{}, kw map[string]interface{}) (interface{}, error) {
			return args[0], nil
		},
		"make_inner": func(ctx context.Context, args []interface{}, kw map[string]interface{}) (interface{}, error) {
			return &innerThing{}, nil
		},
		"fail": func(ctx context.Context, args []interface{}, kw map[string]interface{}) (interface{}, error) {
			return nil, errors.New("boom")
		},
		"slow": func(ctx context.Context, args []interface{}, kw map[string]interface{}) (interface{}, error) {
			time.Sleep(200 * time.Millisecond)
			return true, nil
		},
	})

	addr := ln.Addr().String()
	go s.Serve(ln)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	time.Sleep(20 * time.Millisecond)
	return addr
}

func TestProxyCallEchoesPrimitive(t *testing.T) {
	c := qt.New(t)
	addr := startTestServer(t)

	cl := client.New(addr)
	result, err := cl.Object("widget").Call("echo", "hello")
	c.Assert(err, qt.IsNil)
	c.Assert(result, qt.Equals, "hello")
}

func TestProxyCallReturningHandleYieldsLiveProxy(t *testing.T) {
	c := qt.New(t)
	addr := startTestServer(t)

	cl := client.New(addr)
	result, err := cl.Object("widget").Call("make_inner")
	c.Assert(err, qt.IsNil)

	inner, ok := result.(*client.Proxy)
	c.Assert(ok, qt.IsTrue)

	first, err := inner.Call("touch")
	c.Assert(err, qt.IsNil)
	c.Assert(first, qt.Equals, float64(1))

	second, err := inner.Call("touch")
	c.Assert(err, qt.IsNil)
	c.Assert(second, qt.Equals, float64(2))
}

func TestProxyCallRemoteExceptionBecomesRemoteError(t *testing.T) {
	c := qt.New(t)
	addr := startTestServer(t)

	cl := client.New(addr)
	_, err := cl.Object("widget").Call("fail")
	c.Assert(err, qt.ErrorMatches, ".*boom.*")
	c.Assert(err, qt.ErrorMatches, ".*"+addr+".*")
}

func TestProxyCallRateLimitRejectsOnCanceledContext(t *testing.T) {
	c := qt.New(t)
	addr := startTestServer(t)

	// Burst of 1 at an effectively-zero rate: the first call consumes the
	// only token, the second blocks on Wait and observes ctx.Done() instead.
	cl := client.New(addr, client.WithRateLimit(rate.Limit(0.0001), 1))
	_, err := cl.Object("widget").Call("echo", "first")
	c.Assert(err, qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = cl.Object("widget").CallKw(ctx, "echo", []interface{}{"second"}, nil)
	c.Assert(err, qt.Not(qt.IsNil))
}

// TestProxyConcurrentCallsOverOneClientAllEchoTheirOwnPayload covers spec.md
// §8's 50-parallel-calls scenario: many goroutines sharing one *client.Client
// (and thus one Channel/http.Client) each get back exactly their own
// payload, and the server is still healthy for a call afterward.
func TestProxyConcurrentCallsOverOneClientAllEchoTheirOwnPayload(t *testing.T) {
	c := qt.New(t)
	addr := startTestServer(t)

	cl := client.New(addr)
	obj := cl.Object("widget")

	const n = 50
	var wg sync.WaitGroup
	errsCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := fmt.Sprintf("Test%d", i)
			result, err := obj.Call("echo", payload)
			if err != nil {
				errsCh <- err
				return
			}
			if result != payload {
				errsCh <- fmt.Errorf("call %d: got %v, want %v", i, result, payload)
			}
		}(i)
	}
	wg.Wait()
	close(errsCh)

	for err := range errsCh {
		c.Check(err, qt.IsNil)
	}

	result, err := obj.Call("echo", "still alive")
	c.Assert(err, qt.IsNil)
	c.Assert(result, qt.Equals, "still alive")
}

func TestProxyCallUnknownObjectIsNotFound(t *testing.T) {
	c := qt.New(t)
	addr := startTestServer(t)

	cl := client.New(addr)
	_, err := cl.Object("nope").Call("whatever")
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestProxyCallRespectsTimeout(t *testing.T) {
	c := qt.New(t)
	addr := startTestServer(t)

	cl := client.New(addr, client.WithTimeout(20*time.Millisecond))
	_, err := cl.Object("widget").Call("slow")
	c.Assert(err, qt.ErrorMatches, ".*timed out.*")
}

func TestProxyCannotBeEncodedAsAnArgument(t *testing.T) {
	c := qt.New(t)
	addr := startTestServer(t)

	cl := client.New(addr)
	inner := cl.Object("widget")

	other := client.New(addr)
	_, err := other.Object("widget").CallKw(context.Background(), "echo", []interface{}{inner}, nil)
	c.Assert(err, qt.ErrorMatches, ".*not.*encodable.*")
}

var msgSchema = message.NewSchema("Ping",
	message.FieldDef{Name: "n", Spec: message.Int{}},
)

func TestStubRoundTripsTypedMessage(t *testing.T) {
	c := qt.New(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)

	s := server.New()
	s.RegisterMessageHandler("ping", msgSchema, msgSchema,
		func(ctx context.Context, req *message.Message) (*message.Message, error) {
			n, _ := req.Get("n")
			return msgSchema.New(map[string]interface{}{"n": n.(float64) + 1}), nil
		})
	addr := ln.Addr().String()
	go s.Serve(ln)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	time.Sleep(20 * time.Millisecond)

	cl := client.New(addr)
	stub := cl.NewStub("ping", msgSchema, msgSchema)

	req := msgSchema.New(map[string]interface{}{"n": 1.0})
	resp, err := stub.Call(context.Background(), req)
	c.Assert(err, qt.IsNil)

	n, err := resp.Get("n")
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, float64(2))
}

func TestStubServerErrorIsReported(t *testing.T) {
	c := qt.New(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)

	s := server.New()
	s.RegisterMessageHandler("ping", msgSchema, msgSchema,
		func(ctx context.Context, req *message.Message) (*message.Message, error) {
			return nil, errors.New("no pings today")
		})
	addr := ln.Addr().String()
	go s.Serve(ln)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	time.Sleep(20 * time.Millisecond)

	cl := client.New(addr)
	stub := cl.NewStub("ping", msgSchema, msgSchema)

	_, err = stub.Call(context.Background(), msgSchema.New(map[string]interface{}{"n": 1.0}))
	c.Assert(err, qt.ErrorMatches, ".*no pings today.*")
}
