package server

import (
	"github.com/rs/zerolog"

	"github.com/speedy-rpc/speedygo/internal/logging"
)

// Option configures a Server at construction time. The runtime has no
// environment variables or persisted configuration (spec.md §6); every
// knob is an explicit option passed by the embedding program.
type Option func(*Server)

// WithLogger overrides the zerolog logger the server logs through. The
// default derives from the process-wide root logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.rootLogger = logger }
}

// WithConcurrencyLimit overrides the worker-pool admission-control capacity
// (design target per spec.md §5 is approximately 10,000 concurrent
// connections).
func WithConcurrencyLimit(n int64) Option {
	return func(s *Server) { s.concurrencyLimit = n }
}

// WithShutdownDrainDisabled makes Stop force-close in-flight connections
// immediately instead of waiting for them to drain, for tests that don't
// want to hold a deadline open.
func WithShutdownDrainDisabled() Option {
	return func(s *Server) { s.noDrainWait = true }
}

func defaultOptions() []Option {
	return []Option{
		WithLogger(*logging.RootLogger),
		WithConcurrencyLimit(10000),
	}
}
