// Package registry implements the server-side object table: a map from
// ObjectId to live object plus the method-dispatch table each object was
// registered with, anonymous id minting for method results that aren't
// primitive values, and the exception barrier around method execution.
package registry

import (
	"context"
	"sync"

	"github.com/rs/xid"

	"github.com/speedy-rpc/speedygo/errs"
	"github.com/speedy-rpc/speedygo/protocol"
)

// MethodHandler implements one method of a registered object. Returning a
// non-nil error is how a method "raises": the registry turns it into a
// Raised DispatchResult rather than letting it propagate as a Go error to
// the dispatcher.
type MethodHandler func(ctx context.Context, args []interface{}, kw map[string]interface{}) (interface{}, error)

// Handlers is the dispatch table a caller supplies at registration time, in
// place of the reflection-based method lookup the source language used.
type Handlers map[string]MethodHandler

// Registrable is implemented by any non-primitive value a MethodHandler
// returns. The registry calls RPCHandlers to build the dispatch table for
// the handle it mints for the value.
type Registrable interface {
	RPCHandlers() Handlers
}

type entry struct {
	target   interface{}
	handlers Handlers
}

// Registry is the server-side objectid -> live object map described in
// spec.md §4.5. The zero value is not usable; construct one with New.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register installs obj under objectID with the given dispatch table. If
// objectID is already present, Register is a no-op and the existing
// mapping wins — idempotent registration is required so tests can restart
// a server against the same registry without double-registering.
func (r *Registry) Register(objectID string, obj interface{}, handlers Handlers) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[objectID]; ok {
		return
	}
	r.entries[objectID] = entry{target: obj, handlers: handlers}
}

// Keys returns the ids of every currently registered object, in no
// particular order. Used by the server's introspection surface.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}

// Lookup returns the live object registered under objectID, or false if
// there is none.
func (r *Registry) Lookup(objectID string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[objectID]
	return e.target, ok
}

// DispatchKind discriminates the outcome of a Dispatch call.
type DispatchKind int

const (
	// Value means the method returned a primitive; see DispatchResult.Value.
	Value DispatchKind = iota
	// Handle means the method returned a non-primitive, now registered
	// under DispatchResult.ObjectID.
	Handle
	// Raised means the method (or the registry's own handling of its
	// result) raised; see DispatchResult.Exception.
	Raised
)

// DispatchResult is the outcome of one Dispatch call.
type DispatchResult struct {
	Kind      DispatchKind
	Value     interface{}
	ObjectID  string
	Exception *protocol.ExceptionInfo
}

// Dispatch resolves method on the object registered under objectID and
// invokes it with args and kw, sandboxed by an exception barrier: a panic
// or returned error from the method becomes a Raised result, never a Go
// panic or error crossing back to the caller. The only error Dispatch
// itself returns is NotFound, for an objectID with no registered entry —
// callers following the §4.6 dispatcher protocol will already have
// excluded that case via Lookup, but Dispatch checks again so it's safe to
// call directly.
func (r *Registry) Dispatch(ctx context.Context, objectID, method string, args []interface{}, kw map[string]interface{}) (DispatchResult, error) {
	r.mu.RLock()
	e, ok := r.entries[objectID]
	r.mu.RUnlock()
	if !ok {
		return DispatchResult{}, errs.B().Code(errs.NotFound).Msgf("no such object %q", objectID).Err()
	}

	handler, ok := e.handlers[method]
	if !ok {
		return DispatchResult{
			Kind: Raised,
			Exception: &protocol.ExceptionInfo{
				Exception: "AttributeError",
				Message:   "object " + objectID + " has no method " + method,
			},
		}, nil
	}

	return r.invoke(ctx, handler, args, kw), nil
}

func (r *Registry) invoke(ctx context.Context, handler MethodHandler, args []interface{}, kw map[string]interface{}) (result DispatchResult) {
	defer func() {
		if p := recover(); p != nil {
			result = DispatchResult{
				Kind: Raised,
				Exception: &protocol.ExceptionInfo{
					Exception: "PanicError",
					Message:   panicMessage(p),
					Traceback: panicStack(),
				},
			}
		}
	}()

	v, err := handler(ctx, args, kw)
	if err != nil {
		return DispatchResult{
			Kind: Raised,
			Exception: &protocol.ExceptionInfo{
				Exception: errTypeName(err),
				Message:   err.Error(),
			},
		}
	}

	if IsPrimitive(v) {
		return DispatchResult{Kind: Value, Value: v}
	}

	reg, ok := v.(Registrable)
	if !ok {
		return DispatchResult{
			Kind: Raised,
			Exception: &protocol.ExceptionInfo{
				Exception: "TypeError",
				Message:   "method returned a non-primitive value that does not implement registry.Registrable",
			},
		}
	}

	id := r.registerAnonymous(v, reg.RPCHandlers())
	return DispatchResult{Kind: Handle, ObjectID: id}
}

// registerAnonymous mints a fresh "anonid:" handle and installs it. The
// suffix comes from rs/xid: compact, sortable, and collision-free within
// a process without a shared counter needing its own lock.
func (r *Registry) registerAnonymous(obj interface{}, handlers Handlers) string {
	id := "anonid:" + xid.New().String()
	r.mu.Lock()
	r.entries[id] = entry{target: obj, handlers: handlers}
	r.mu.Unlock()
	return id
}
