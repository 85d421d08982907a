package client

import (
	"context"

	"github.com/speedy-rpc/speedygo/codec"
	"github.com/speedy-rpc/speedygo/errs"
	"github.com/speedy-rpc/speedygo/message"
	"github.com/speedy-rpc/speedygo/protocol"
)

// Stub is the typed-message (C8') counterpart to Proxy: a single remote
// method bound to a fixed request/response Schema pair rather than a
// dynamic, object-addressed method name.
type Stub struct {
	client         *Client
	method         string
	requestSchema  *message.Schema
	responseSchema *message.Schema
}

// NewStub binds method at path "/rpc/<method>" to requestSchema and
// responseSchema. Every Call through the returned Stub validates its
// argument against requestSchema before sending and its result against
// responseSchema after decoding.
func (c *Client) NewStub(method string, requestSchema, responseSchema *message.Schema) *Stub {
	return &Stub{client: c, method: method, requestSchema: requestSchema, responseSchema: responseSchema}
}

// Call sends req (which must be of the Stub's request schema) and returns
// the decoded response message. A remote-side failure (a
// ServerErrorResponse body) is reported as a RemoteError whose message is
// the endpoint, exception name and message on one line, rather than the
// RMI variant's line-by-line prefixed traceback.
func (s *Stub) Call(ctx context.Context, req *message.Message) (*message.Message, error) {
	if req.Schema() != s.requestSchema {
		return nil, errs.B().Code(errs.SchemaError).
			Msgf("call to %s: request is schema %q, want %q", s.method, req.Schema().Name, s.requestSchema.Name).Err()
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := codec.Encode(req.Fields())
	if err != nil {
		return nil, err
	}

	status, respBody, err := s.client.channel.PostWithTimeout(ctx, "/rpc/"+s.method, body, s.client.timeout)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, errs.B().Code(errs.TransportError).
			Meta("endpoint", s.client.channel.Endpoint(), "method", s.method, "status", status).
			Msgf("unexpected status %d from %s", status, s.client.channel.Endpoint()).Err()
	}

	var errResp protocol.ServerErrorResponse
	if probe, perr := codec.DecodeValue(respBody); perr == nil {
		if m, ok := probe.(map[string]interface{}); ok {
			if _, hasExc := m["exc_info"]; hasExc {
				if derr := codec.Decode(respBody, &errResp); derr == nil {
					return nil, serverError(s.client.channel.Endpoint(), errResp.ExcInfo)
				}
			}
		}
	}

	fields, err := codec.DecodeValue(respBody)
	if err != nil {
		return nil, err
	}
	fieldMap, ok := fields.(map[string]interface{})
	if !ok {
		return nil, errs.B().Code(errs.CodecError).Msgf("response from %s is not an object", s.method).Err()
	}
	return message.NewValidated(s.responseSchema, fieldMap)
}

func serverError(endpoint string, ei protocol.ExceptionInfo) error {
	return errs.B().Code(errs.RemoteError).
		Meta("endpoint", endpoint, "exception", ei.Exception).
		Msgf("%s: %s: %s", endpoint, ei.Exception, ei.Message).Err()
}
