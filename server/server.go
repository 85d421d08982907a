// Package server implements the request dispatcher (C6) and server runtime
// (C7): an HTTP server that decodes ServerRequest/typed-message envelopes,
// calls into a registry.Registry, and encodes the response, accepting
// connections through a bounded worker pool with cooperative shutdown.
package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/speedy-rpc/speedygo/registry"
	"github.com/speedy-rpc/speedygo/rlog"
	"github.com/speedy-rpc/speedygo/shutdown"
)

// Server is the embeddable RPC server: an object registry plus the HTTP
// plumbing to dispatch requests against it. The zero value is not usable;
// construct one with New.
type Server struct {
	state state

	rootLogger       zerolog.Logger
	log              *rlog.Manager
	concurrencyLimit int64
	noDrainWait      bool

	registry *registry.Registry
	typed    *typedRegistry
	shutdown *shutdown.Coordinator

	router  *httprouter.Router
	httpsrv *http.Server

	mu         sync.Mutex
	stopCancel context.CancelFunc
}

// New constructs a Server. It registers the reserved "self" object (spec.md
// §4.6) for introspection before returning.
func New(opts ...Option) *Server {
	s := &Server{
		state:    stateNew,
		registry: registry.New(),
		typed:    newTypedRegistry(),
		shutdown: shutdown.NewCoordinator(),
		router:   httprouter.New(),
	}
	for _, opt := range defaultOptions() {
		opt(s)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = rlog.New(&s.rootLogger)

	s.router.RedirectTrailingSlash = false
	s.router.RedirectFixedPath = false
	s.router.POST("/rpc/invoke/:objectid", s.handleInvoke)
	s.router.POST("/rpc/:method", s.handleTyped)

	s.registerSelf()
	s.registerDebugRoutes()

	return s
}

// RegisterObject installs obj under objectID with the given dispatch table,
// reachable at POST /rpc/invoke/<objectID>. Sugar over Registry.Register,
// matching spec.md §4.7's register_object atop the generic register API.
func (s *Server) RegisterObject(objectID string, obj interface{}, handlers registry.Handlers) {
	s.registry.Register(objectID, obj, handlers)
	s.log.Info("registered object", "object", objectID)
}

// Handle installs an arbitrary HTTP handler for GET requests at path, the
// escape hatch spec.md §4.7 reserves for static templated responses and
// debug surfaces.
func (s *Server) Handle(path string, h http.Handler) {
	s.router.Handler(http.MethodGet, path, h)
}

// Registry exposes the underlying object registry, for callers that need
// to Lookup an object outside of a dispatched call (e.g. the self object's
// own introspection handlers).
func (s *Server) Registry() *registry.Registry { return s.registry }

// Serve transitions the server through Listening -> Serving and blocks
// accepting connections on ln until Stop is called, at which point it
// returns nil. Serve returns a LifecycleError instead of blocking if the
// server is already listening or serving. A server that has completed a
// Stop is restartable: a later Serve re-arms it from Stopped back to
// Listening, per spec.md §8's start/stop/start/stop round trip.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.transition(stateNew, stateListening); err != nil {
		if err2 := s.transition(stateStopped, stateListening); err2 != nil {
			return err
		}
	}

	stopCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.stopCancel = cancel
	s.mu.Unlock()

	bounded := newAdmissionListener(ln, s.concurrencyLimit, stopCtx)

	// http.Server.Shutdown latches its internal "closed" flag permanently,
	// so a restart after Stop needs a fresh instance rather than reusing
	// s.httpsrv across the Stopped -> Listening re-arm below. Assigned
	// before the Serving transition so a Stop racing in right after it
	// always finds a non-nil s.httpsrv to shut down.
	s.httpsrv = &http.Server{Handler: s.accessLog(s.router)}

	if err := s.transition(stateListening, stateServing); err != nil {
		cancel()
		return err
	}

	s.log.Info("listening for incoming RPC requests", "addr", ln.Addr().String())
	err := s.httpsrv.Serve(bounded)
	if err == http.ErrServerClosed {
		return nil
	}
	select {
	case <-stopCtx.Done():
		// Stop canceled admission before http.Server.Shutdown finished
		// closing the listener; treat it the same as ErrServerClosed.
		return nil
	default:
		return err
	}
}

// Start is like Serve but returns immediately once the accept loop is
// live, running it on a background goroutine. It reports that goroutine's
// eventual error, if any, via the returned channel.
func (s *Server) Start(ln net.Listener) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()
	return done
}

// Stop drives the cooperative shutdown sequence from spec.md §5: it stops
// admitting new requests, waits for in-flight dispatches to finish (or for
// force's deadline, whichever comes first), runs any registered
// shutdown.Handlers, then closes the listener. Connections still active
// when force's deadline passes are closed. Double-Stop is a
// LifecycleError.
func (s *Server) Stop(force context.Context) error {
	if err := s.transition(stateServing, stateStopping); err != nil {
		if err2 := s.transition(stateListening, stateStopping); err2 != nil {
			return err
		}
	}

	s.mu.Lock()
	cancel := s.stopCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if s.noDrainWait {
		force, cancel := context.WithCancel(force)
		cancel()
		_ = s.shutdown.Shutdown(force)
	} else if err := s.shutdown.Shutdown(force); err != nil {
		s.log.Error("shutdown handler failed", "err", err)
	}

	var err error
	if s.noDrainWait {
		err = s.httpsrv.Close()
	} else if err = s.httpsrv.Shutdown(force); err != nil {
		// force's deadline passed with connections still active: close
		// them instead of leaving them open past the drain interval.
		_ = s.httpsrv.Close()
	}
	atomic.StoreInt32((*int32)(&s.state), int32(stateStopped))
	return err
}

// RegisterShutdownHandler adds h to run during Stop, after in-flight
// requests have drained (or the deadline has passed).
func (s *Server) RegisterShutdownHandler(h shutdown.Handler) {
	s.shutdown.Register(h)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		m := httpsnoop.CaptureMetrics(next, w, req)
		s.log.With(
			"method", req.Method,
			"path", req.URL.Path,
			"status", m.Code,
			"duration", time.Since(start),
		).Info("handled request")
	})
}

// beginRequest marks a dispatch in flight for the shutdown coordinator and
// returns the func to call when it completes.
func (s *Server) beginRequest() func() {
	return s.shutdown.BeginRequest()
}
