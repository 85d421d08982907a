package protocol_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/speedy-rpc/speedygo/protocol"
)

func TestServerRequestRoundTrip(t *testing.T) {
	c := qt.New(t)

	req := protocol.ServerRequest{
		Method: "test_echo",
		Args:   [][]byte{[]byte(`"Hi!"`)},
		Kw:     map[string][]byte{},
	}
	data, err := req.Encode()
	c.Assert(err, qt.IsNil)

	got, err := protocol.DecodeServerRequest(data)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Method, qt.Equals, "test_echo")
	c.Assert(got.Args, qt.DeepEquals, req.Args)
}

func TestServerResponseDataRoundTrip(t *testing.T) {
	c := qt.New(t)

	resp := protocol.DataResponse([]byte(`"Hi!"`))
	data, err := resp.Encode()
	c.Assert(err, qt.IsNil)

	got, err := protocol.DecodeServerResponse(data)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Kind(), qt.Equals, protocol.KindData)
	c.Assert(string(got.Data()), qt.Equals, `"Hi!"`)
}

func TestServerResponseNullDataRoundTrip(t *testing.T) {
	c := qt.New(t)

	resp := protocol.DataResponse(nil)
	data, err := resp.Encode()
	c.Assert(err, qt.IsNil)

	got, err := protocol.DecodeServerResponse(data)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Kind(), qt.Equals, protocol.KindData)
	c.Assert(string(got.Data()), qt.Equals, "null")
}

func TestServerResponseHandleRoundTrip(t *testing.T) {
	c := qt.New(t)

	resp := protocol.HandleResponse("anonid:abc123")
	data, err := resp.Encode()
	c.Assert(err, qt.IsNil)

	got, err := protocol.DecodeServerResponse(data)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Kind(), qt.Equals, protocol.KindObjectID)
	c.Assert(got.ObjectID(), qt.Equals, "anonid:abc123")
}

func TestServerResponseExceptionRoundTrip(t *testing.T) {
	c := qt.New(t)

	resp := protocol.ExceptionResponse(protocol.ExceptionInfo{
		Exception: "Exception",
		Message:   "Bob",
		Traceback: "Traceback (most recent call last):\n...\nException: Bob",
	})
	data, err := resp.Encode()
	c.Assert(err, qt.IsNil)

	got, err := protocol.DecodeServerResponse(data)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Kind(), qt.Equals, protocol.KindException)
	c.Assert(got.Exception().Message, qt.Equals, "Bob")
}
