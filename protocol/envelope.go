// Package protocol defines the envelopes carried over the wire: the request
// and response shapes for both the object-RMI variant and the typed-message
// variant, plus the tagged one-of discriminator on ServerResponse.
package protocol

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/speedy-rpc/speedygo/errs"
)

var json = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

// ServerRequest carries one RMI method call: the method name and its
// arguments, each independently codec-encoded so a large argument doesn't
// get re-copied while the dispatcher decodes the envelope itself.
type ServerRequest struct {
	Method string            `json:"method"`
	Args   [][]byte          `json:"args"`
	Kw     map[string][]byte `json:"kw"`
}

// ExceptionInfo is the purely informational record of a remote raise: no
// recoverable structure, just enough text for a human or a log line.
type ExceptionInfo struct {
	Exception string `json:"exception"`
	Message   string `json:"message"`
	Traceback string `json:"traceback"`
}

// ResponseKind discriminates the one-of carried by a ServerResponse.
type ResponseKind int

const (
	// KindData means Data holds the method's codec-encoded return value; a
	// null return is carried as the encoding "null", which MarshalJSON also
	// writes for a data-kind response built with empty data.
	KindData ResponseKind = iota
	// KindObjectID means the method returned a handle to a non-primitive,
	// newly registered under ObjectID.
	KindObjectID
	// KindException means the method raised; Exception describes it.
	KindException
)

// ServerResponse is the tagged variant answering a ServerRequest: exactly
// one of a data value, an object handle, or an exception.
type ServerResponse struct {
	kind      ResponseKind
	objectID  string
	data      []byte
	exception *ExceptionInfo
}

// DataResponse wraps an already codec-encoded return value.
func DataResponse(data []byte) ServerResponse {
	return ServerResponse{kind: KindData, data: data}
}

// HandleResponse wraps a newly minted or existing object id.
func HandleResponse(objectID string) ServerResponse {
	return ServerResponse{kind: KindObjectID, objectID: objectID}
}

// ExceptionResponse wraps a remote raise.
func ExceptionResponse(ei ExceptionInfo) ServerResponse {
	return ServerResponse{kind: KindException, exception: &ei}
}

func (r ServerResponse) Kind() ResponseKind { return r.kind }

// Data returns the encoded return value. Only meaningful if Kind() ==
// KindData.
func (r ServerResponse) Data() []byte { return r.data }

// ObjectID returns the handle. Only meaningful if Kind() == KindObjectID.
func (r ServerResponse) ObjectID() string { return r.objectID }

// Exception returns the raised exception's info. Only meaningful if Kind()
// == KindException.
func (r ServerResponse) Exception() *ExceptionInfo { return r.exception }

type wireResponse struct {
	ObjectID *string             `json:"objectid,omitempty"`
	Data     jsoniter.RawMessage `json:"data,omitempty"`
	ExcInfo  *ExceptionInfo      `json:"exc_info,omitempty"`
}

func (r ServerResponse) MarshalJSON() ([]byte, error) {
	var w wireResponse
	switch r.kind {
	case KindException:
		w.ExcInfo = r.exception
	case KindObjectID:
		id := r.objectID
		w.ObjectID = &id
	default:
		data := r.data
		if len(data) == 0 {
			data = []byte("null")
		}
		w.Data = data
	}
	return json.Marshal(w)
}

func (r *ServerResponse) UnmarshalJSON(data []byte) error {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.ExcInfo != nil:
		*r = ExceptionResponse(*w.ExcInfo)
	case w.ObjectID != nil:
		*r = HandleResponse(*w.ObjectID)
	default:
		*r = DataResponse(w.Data)
	}
	return nil
}

// ServerErrorResponse answers a typed-message (C8') call whose method
// raised, distinct from ServerResponse's exc_info since the typed-message
// path has no object/handle concept to disambiguate from.
type ServerErrorResponse struct {
	ExcInfo ExceptionInfo `json:"exc_info"`
}

// Encode serializes r for the wire.
func (r ServerRequest) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errs.WrapCode(err, errs.CodecError, "encode ServerRequest")
	}
	return data, nil
}

// DecodeServerRequest parses a wire ServerRequest body.
func DecodeServerRequest(data []byte) (ServerRequest, error) {
	var r ServerRequest
	if err := json.Unmarshal(data, &r); err != nil {
		return ServerRequest{}, errs.WrapCode(err, errs.CodecError, "decode ServerRequest")
	}
	return r, nil
}

// Encode serializes r for the wire.
func (r ServerResponse) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errs.WrapCode(err, errs.CodecError, "encode ServerResponse")
	}
	return data, nil
}

// DecodeServerResponse parses a wire ServerResponse body.
func DecodeServerResponse(data []byte) (ServerResponse, error) {
	var r ServerResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return ServerResponse{}, errs.WrapCode(err, errs.CodecError, "decode ServerResponse")
	}
	return r, nil
}
