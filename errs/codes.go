package errs

// ErrCode classifies an error raised anywhere in the RPC runtime.
//
// It maps 1:1 onto the error taxonomy in the protocol design: codes that can
// legitimately cross the wire (NotFound, RemoteError) and codes that are
// purely local to one side of the connection (SchemaError, LifecycleError).
type ErrCode int

const (
	// OK indicates no error. Code(nil) reports OK.
	OK ErrCode = iota

	// Unknown is used for errors that did not originate as an *Error,
	// or whose code was never set.
	Unknown

	// Canceled indicates the operation was canceled, typically via a
	// context deadline or explicit cancellation.
	Canceled

	// DeadlineExceeded indicates a deadline was exceeded. The runtime's own
	// client does not use it: a per-call timeout surfaces to callers as a
	// TransportError carrying the timeout in its metadata.
	DeadlineExceeded

	// SchemaError indicates a Message field assignment or validation
	// failure: an unknown field name, or a value of the wrong shape.
	// Local to the caller; never crosses the wire directly.
	SchemaError

	// CodecError indicates encode/decode failure. On the server this
	// becomes an HTTP 500; on the client it is raised to the caller.
	CodecError

	// TransportError indicates a connect, write, read, or status-code
	// failure at the Channel layer. Carries the remote endpoint and the
	// underlying cause.
	TransportError

	// NotFound indicates a registry miss. The server answers with HTTP
	// 404; the client maps a 404 response to TransportError.
	NotFound

	// RemoteError wraps a ServerResponse's ExceptionInfo once it reaches
	// the caller: the remote method raised, and the traceback text has
	// been quoted into the local error message.
	RemoteError

	// LifecycleError indicates a server was used out of sequence: double
	// Start, double Stop, or use before Listen.
	LifecycleError

	// Internal indicates a dispatcher bug: a decode failure on a
	// well-formed request, or a panic recovered outside user method
	// execution. The only source of a bare HTTP 500.
	Internal

	numCodes
)

var codeNames = [numCodes]string{
	OK:               "ok",
	Unknown:          "unknown",
	Canceled:         "canceled",
	DeadlineExceeded: "deadline_exceeded",
	SchemaError:      "schema_error",
	CodecError:       "codec_error",
	TransportError:   "transport_error",
	NotFound:         "not_found",
	RemoteError:      "remote_error",
	LifecycleError:   "lifecycle_error",
	Internal:         "internal",
}

var codeStatus = [numCodes]int{
	OK:               200,
	Unknown:          500,
	Canceled:         499,
	DeadlineExceeded: 504,
	SchemaError:      400,
	CodecError:       500,
	TransportError:   502,
	NotFound:         404,
	RemoteError:      200,
	LifecycleError:   500,
	Internal:         500,
}

// String returns the wire name of the code, e.g. "not_found".
func (c ErrCode) String() string {
	if c < 0 || c >= numCodes {
		return "unknown"
	}
	return codeNames[c]
}

// HTTPStatus reports the HTTP status code that a dispatcher-internal error
// of this kind maps to. It has no bearing on RemoteError, which always rides
// inside a 200 response as exc_info per the dispatcher design.
func (c ErrCode) HTTPStatus() int {
	if c < 0 || c >= numCodes {
		return 500
	}
	return codeStatus[c]
}

func (c ErrCode) MarshalJSON() ([]byte, error) {
	return []byte("\"" + c.String() + "\""), nil
}
