package client

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/speedy-rpc/speedygo/codec"
	"github.com/speedy-rpc/speedygo/errs"
	"github.com/speedy-rpc/speedygo/internal/limiter"
	"github.com/speedy-rpc/speedygo/protocol"
)

// Client is a connection to one server, able to mint Proxy values for its
// registered objects. Per spec.md §9 this replaces dynamic attribute
// interception (the source's __getattr__-based stub) with an explicit call
// site: Object then Call, rather than a magic method lookup.
type Client struct {
	channel *Channel
	timeout time.Duration
	limiter limiter.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every call made through Proxies minted by this Client.
// Zero (the default) means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit paces every call made through Proxies minted by this Client
// to at most r per second with burst b, so one misbehaving caller can't
// flood a single remote object. The default is unlimited.
func WithRateLimit(r rate.Limit, b int) Option {
	return func(c *Client) { c.limiter = limiter.NewRate(r, b) }
}

// WithChannelOptions forwards options to the underlying Channel.
func WithChannelOptions(opts ...ChannelOption) Option {
	return func(c *Client) {
		for _, opt := range opts {
			opt(c.channel)
		}
	}
}

// New dials no connection up front (the Channel's http.Client connects
// lazily on first Post) and returns a Client to endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{channel: NewChannel(endpoint), limiter: limiter.None()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Object returns a Proxy for the remote object registered under objectID.
// The well-known "self" object exposes list_objects and shutdown.
func (c *Client) Object(objectID string) *Proxy {
	return &Proxy{client: c, objectID: objectID}
}

// Proxy is a handle to one remote object. It implements codec.Unencodable
// so that accidentally embedding a Proxy inside a call argument fails fast
// with a CodecError instead of silently trying to serialize a client-side
// value across the wire.
type Proxy struct {
	client   *Client
	objectID string
}

var _ codec.Unencodable = (*Proxy)(nil)

// Unencodable implements codec.Unencodable.
func (p *Proxy) Unencodable() string {
	return "proxy for remote object " + p.objectID + " cannot be sent over the wire"
}

// ObjectID returns the remote object id this Proxy addresses.
func (p *Proxy) ObjectID() string { return p.objectID }

// Call invokes method with positional args and no keyword arguments. See
// CallKw for the full form.
func (p *Proxy) Call(method string, args ...interface{}) (interface{}, error) {
	return p.CallKw(context.Background(), method, args, nil)
}

// CallKw invokes method on the remote object, encoding args and kw
// independently per spec.md §4.2, and decodes the one-of response:
//   - an exception becomes a RemoteError
//   - an object handle becomes a new Proxy bound to the same Client
//   - otherwise the decoded data value is returned
func (p *Proxy) CallKw(ctx context.Context, method string, args []interface{}, kw map[string]interface{}) (interface{}, error) {
	if err := p.client.limiter.Wait(ctx); err != nil {
		return nil, errs.WrapCode(err, errs.Canceled, "rate limit wait")
	}

	req, err := encodeRequest(method, args, kw)
	if err != nil {
		return nil, err
	}

	path := "/rpc/invoke/" + p.objectID
	status, body, err := p.client.channel.PostWithTimeout(ctx, path, req, p.client.timeout)
	if err != nil {
		return nil, err
	}
	if status == 404 {
		return nil, errs.B().Code(errs.TransportError).
			Meta("endpoint", p.client.channel.Endpoint(), "object", p.objectID, "status", status).
			Msgf("object %q not found at %s", p.objectID, p.client.channel.Endpoint()).Err()
	}
	if status != 200 {
		return nil, errs.B().Code(errs.TransportError).
			Meta("endpoint", p.client.channel.Endpoint(), "status", status).
			Msgf("unexpected status %d from %s", status, p.client.channel.Endpoint()).Err()
	}

	resp, err := protocol.DecodeServerResponse(body)
	if err != nil {
		return nil, err
	}

	switch resp.Kind() {
	case protocol.KindException:
		return nil, remoteError(p.client.channel.Endpoint(), resp.Exception())
	case protocol.KindObjectID:
		return p.client.Object(resp.ObjectID()), nil
	default:
		return codec.DecodeValue(resp.Data())
	}
}

func encodeRequest(method string, args []interface{}, kw map[string]interface{}) ([]byte, error) {
	encArgs := make([][]byte, len(args))
	for i, a := range args {
		b, err := codec.Encode(a)
		if err != nil {
			return nil, err
		}
		encArgs[i] = b
	}
	var encKw map[string][]byte
	if len(kw) > 0 {
		encKw = make(map[string][]byte, len(kw))
		for k, v := range kw {
			b, err := codec.Encode(v)
			if err != nil {
				return nil, err
			}
			encKw[k] = b
		}
	}
	return protocol.ServerRequest{Method: method, Args: encArgs, Kw: encKw}.Encode()
}

// remoteError turns a raised exception's info into a RemoteError whose
// message carries the originating endpoint on every line, so a traceback
// nested through several hops of proxy calls still shows where each frame
// ran.
func remoteError(endpoint string, ei *protocol.ExceptionInfo) error {
	if ei == nil {
		return errs.B().Code(errs.RemoteError).Meta("endpoint", endpoint).Msg("remote raised with no exception info").Err()
	}
	tb := ei.Traceback
	if tb == "" {
		tb = ei.Exception + ": " + ei.Message
	}
	lines := strings.Split(tb, "\n")
	for i, l := range lines {
		lines[i] = endpoint + ": " + l
	}
	return errs.B().Code(errs.RemoteError).
		Meta("endpoint", endpoint, "exception", ei.Exception).
		Msg(strings.Join(lines, "\n")).Err()
}
