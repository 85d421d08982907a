// Package errs provides the structured error type shared by every layer of
// the RPC runtime: the server (decode/dispatch failures), the client
// (transport and remote-exception failures), and the message schema layer
// (validation failures).
package errs

import (
	"runtime/debug"
	"strings"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: false,
}.Froze()

// Error is an error carrying a code, a human-readable message, and
// arbitrary metadata. Unlike a plain error, its Code is meaningful to
// callers on the other side of a process boundary once translated into an
// ExceptionInfo or reported via HTTPStatus.
type Error struct {
	Code    ErrCode
	Message string
	Meta    Metadata

	underlying error
	stack      []byte
}

// Metadata holds arbitrary key/value pairs attached to an error for local
// diagnostics. It is never sent across the wire.
type Metadata map[string]interface{}

// Wrap wraps err with an additional message, preserving its code if err is
// already an *Error. Returns nil if err is nil.
func Wrap(err error, msg string, metaPairs ...interface{}) error {
	return wrap(err, Unknown, msg, false, metaPairs)
}

// WrapCode is like Wrap but also sets the error code, unless code is OK (in
// which case it reports nil, mirroring the "no error" convention).
func WrapCode(err error, code ErrCode, msg string, metaPairs ...interface{}) error {
	if code == OK {
		return nil
	}
	return wrap(err, code, msg, true, metaPairs)
}

func wrap(err error, code ErrCode, msg string, setCode bool, metaPairs []interface{}) error {
	if err == nil {
		return nil
	}
	e := &Error{Code: code, Message: msg, underlying: err}
	if ee, ok := err.(*Error); ok {
		if !setCode {
			e.Code = ee.Code
		}
		e.Meta = mergeMeta(ee.Meta, metaPairs)
		e.stack = ee.stack
	} else {
		e.Meta = mergeMeta(nil, metaPairs)
		e.stack = debug.Stack()
	}
	return e
}

func captureStack() []byte { return debug.Stack() }

// Convert turns any error into an *Error, tagging it Unknown if it wasn't
// one already. Returns nil if err is nil.
func Convert(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Code: Unknown, underlying: err, stack: debug.Stack()}
}

// Code reports the error's code, OK if err is nil, or Unknown if err is not
// an *Error.
func Code(err error) ErrCode {
	if err == nil {
		return OK
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return Unknown
}

// Meta reports the metadata attached to err, or nil.
func Meta(err error) Metadata {
	if e, ok := err.(*Error); ok {
		return e.Meta
	}
	return nil
}

// Stack reports the captured stack trace for err, or nil.
func Stack(err error) []byte {
	if e, ok := err.(*Error); ok {
		return e.stack
	}
	return nil
}

func (e *Error) Error() string {
	if e.Code == Unknown {
		return "unknown: " + e.ErrorMessage()
	}
	return e.Code.String() + ": " + e.ErrorMessage()
}

// ErrorMessage joins this error's message with the messages of any chained
// underlying errors, innermost last.
func (e *Error) ErrorMessage() string {
	if e.underlying == nil {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	var next error = e.underlying
	for next != nil {
		var msg string
		if ee, ok := next.(*Error); ok {
			msg, next = ee.Message, ee.underlying
		} else {
			msg, next = next.Error(), nil
		}
		if b.Len() > 0 && msg != "" {
			b.WriteString(": ")
		}
		b.WriteString(msg)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.underlying }

func mergeMeta(md Metadata, pairs []interface{}) Metadata {
	n := len(pairs)
	if n%2 != 0 {
		panic("errs: odd number of metadata key/value arguments")
	}
	if md == nil && n > 0 {
		md = make(Metadata, n/2)
	}
	for i := 0; i < n; i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("errs: metadata key is not a string")
		}
		md[key] = pairs[i+1]
	}
	return md
}

func init() {
	jsoniter.RegisterTypeEncoderFunc("errs.Error", func(ptr unsafe.Pointer, stream *jsoniter.Stream) {
		e := (*Error)(ptr)
		stream.WriteObjectStart()
		stream.WriteObjectField("code")
		stream.WriteString(e.Code.String())
		stream.WriteMore()
		stream.WriteObjectField("message")
		stream.WriteString(e.ErrorMessage())
		stream.WriteObjectEnd()
	}, nil)
}
