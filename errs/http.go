package errs

import "net/http"

// HTTPError answers a dispatcher-internal error with the status code its
// ErrCode maps to via HTTPStatus and an empty body. Per the dispatcher design,
// this is only used for routing/decode failures (404/500) — remote method
// exceptions are carried as exc_info inside a 200 response, never through
// this path.
func HTTPError(w http.ResponseWriter, err error) {
	status := Code(err).HTTPStatus()
	w.WriteHeader(status)
}
