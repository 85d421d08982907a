// Package rlog provides the structured logging interface used throughout the
// RPC runtime: the server logs one access-log line per handled HTTP request,
// and application code registering objects can use the same interface for
// its own diagnostics. The client does not log.
package rlog

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/speedy-rpc/speedygo/internal/logging"
)

// InternalKeyPrefix marks log field keys reserved for the runtime's own use.
// A caller-supplied field with this prefix is renamed with an "x_" prefix so
// it can never shadow a runtime field.
const InternalKeyPrefix = "rpc_"

// Manager is a logger bound to a single zerolog.Logger. The zero value is
// not usable; construct one with New.
type Manager struct {
	logger *zerolog.Logger
}

// New creates a Manager writing through the given zerolog logger. Passing
// nil uses the process-wide root logger.
func New(logger *zerolog.Logger) *Manager {
	if logger == nil {
		logger = logging.RootLogger
	}
	return &Manager{logger: logger}
}

// Ctx holds logging context accumulated via With, to be reused across
// multiple log calls without re-specifying shared fields each time.
type Ctx struct {
	ctx zerolog.Context
}

func (m *Manager) Debug(msg string, keysAndValues ...interface{}) {
	doLog(m.logger.Debug(), msg, keysAndValues...)
}

func (m *Manager) Info(msg string, keysAndValues ...interface{}) {
	doLog(m.logger.Info(), msg, keysAndValues...)
}

func (m *Manager) Warn(msg string, keysAndValues ...interface{}) {
	doLog(m.logger.Warn(), msg, keysAndValues...)
}

func (m *Manager) Error(msg string, keysAndValues ...interface{}) {
	doLog(m.logger.Error(), msg, keysAndValues...)
}

// With creates a logging context carrying the given key-value pairs,
// inherited by every log call made through the returned Ctx.
func (m *Manager) With(keysAndValues ...interface{}) Ctx {
	ctx := m.logger.With()
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, _ := keysAndValues[i].(string)
		ctx = addContext(ctx, key, keysAndValues[i+1])
	}
	return Ctx{ctx: ctx}
}

func (c Ctx) Debug(msg string, keysAndValues ...interface{}) {
	l := c.ctx.Logger()
	doLog(l.Debug(), msg, keysAndValues...)
}

func (c Ctx) Info(msg string, keysAndValues ...interface{}) {
	l := c.ctx.Logger()
	doLog(l.Info(), msg, keysAndValues...)
}

func (c Ctx) Warn(msg string, keysAndValues ...interface{}) {
	l := c.ctx.Logger()
	doLog(l.Warn(), msg, keysAndValues...)
}

func (c Ctx) Error(msg string, keysAndValues ...interface{}) {
	l := c.ctx.Logger()
	doLog(l.Error(), msg, keysAndValues...)
}

// With returns a new Ctx that inherits c's fields plus the given additions.
// c itself is unaffected.
func (c Ctx) With(keysAndValues ...interface{}) Ctx {
	ctx := c.ctx
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, _ := keysAndValues[i].(string)
		ctx = addContext(ctx, key, keysAndValues[i+1])
	}
	return Ctx{ctx: ctx}
}

// Logger returns the underlying zerolog.Logger for this context, for callers
// that need direct access (e.g. to pass into httpsnoop or a third-party
// middleware that wants a *zerolog.Logger).
func (c Ctx) Logger() zerolog.Logger { return c.ctx.Logger() }

func doLog(ev *zerolog.Event, msg string, keysAndValues ...interface{}) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, _ := keysAndValues[i].(string)
		addEventEntry(ev, key, keysAndValues[i+1])
	}
	ev.Msg(msg)
}

func addEventEntry(ev *zerolog.Event, key string, val interface{}) {
	if reserved(key) {
		key = "x_" + key
	}

	switch val := val.(type) {
	case error:
		ev.AnErr(key, val)
	case string:
		ev.Str(key, val)
	case bool:
		ev.Bool(key, val)

	case time.Time:
		ev.Time(key, val)
	case time.Duration:
		ev.Dur(key, val)

	default:
		ev.Interface(key, val)

	case int8:
		ev.Int8(key, val)
	case int16:
		ev.Int16(key, val)
	case int32:
		ev.Int32(key, val)
	case int64:
		ev.Int64(key, val)
	case int:
		ev.Int(key, val)

	case uint8:
		ev.Uint8(key, val)
	case uint16:
		ev.Uint16(key, val)
	case uint32:
		ev.Uint32(key, val)
	case uint64:
		ev.Uint64(key, val)
	case uint:
		ev.Uint(key, val)

	case float32:
		ev.Float32(key, val)
	case float64:
		ev.Float64(key, val)
	}
}

func addContext(ctx zerolog.Context, key string, val interface{}) zerolog.Context {
	if reserved(key) {
		key = "x_" + key
	}

	switch val := val.(type) {
	case error:
		return ctx.AnErr(key, val)
	case string:
		return ctx.Str(key, val)
	case bool:
		return ctx.Bool(key, val)

	case time.Time:
		return ctx.Time(key, val)
	case time.Duration:
		return ctx.Dur(key, val)

	default:
		return ctx.Interface(key, val)

	case int8:
		return ctx.Int8(key, val)
	case int16:
		return ctx.Int16(key, val)
	case int32:
		return ctx.Int32(key, val)
	case int64:
		return ctx.Int64(key, val)
	case int:
		return ctx.Int(key, val)

	case uint8:
		return ctx.Uint8(key, val)
	case uint16:
		return ctx.Uint16(key, val)
	case uint32:
		return ctx.Uint32(key, val)
	case uint64:
		return ctx.Uint64(key, val)
	case uint:
		return ctx.Uint(key, val)

	case float32:
		return ctx.Float32(key, val)
	case float64:
		return ctx.Float64(key, val)
	}
}

func reserved(key string) bool {
	return strings.HasPrefix(key, InternalKeyPrefix)
}
