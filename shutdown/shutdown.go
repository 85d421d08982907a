// Package shutdown implements the runtime's cooperative graceful-shutdown
// protocol. When the server is asked to stop, it stops admitting new
// dispatches, lets in-flight ones finish (or forces them once a deadline
// passes), then runs any registered cleanup Handlers before reporting done.
package shutdown

import "context"

// Progress reports the state of an ongoing graceful shutdown to registered
// Handlers, so they can decide when it's safe to release their own
// resources (e.g. wait for outstanding requests before closing a database
// handle used by object method implementations).
type Progress struct {
	// OutstandingRequests is canceled once the server has stopped accepting
	// new connections and every in-flight dispatch has completed.
	OutstandingRequests context.Context

	// ForceCloseTasks is canceled once the shutdown deadline passes, telling
	// handlers it's no longer safe to wait for outstanding work.
	ForceCloseTasks context.Context
}

// Handler is implemented by anything that needs to run cleanup during
// shutdown, such as an object closing a connection it holds.
type Handler interface {
	// Shutdown is called once graceful shutdown begins. Its return value is
	// only used for logging; it does not affect the shutdown sequence.
	Shutdown(Progress) error
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(Progress) error

func (f HandlerFunc) Shutdown(p Progress) error { return f(p) }
