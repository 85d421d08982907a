package server

import (
	"sync/atomic"

	"github.com/speedy-rpc/speedygo/errs"
)

// state is the server's lifecycle, matching spec.md §4.7:
// New -> Listening -> Serving -> Stopping -> Stopped.
type state int32

const (
	stateNew state = iota
	stateListening
	stateServing
	stateStopping
	stateStopped
)

func (s state) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateListening:
		return "listening"
	case stateServing:
		return "serving"
	case stateStopping:
		return "stopping"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// transition atomically moves the server from `from` to `to`, failing with
// a LifecycleError if the server isn't currently in `from` — the guard
// behind "double-start and double-stop are errors".
func (s *Server) transition(from, to state) error {
	if !atomic.CompareAndSwapInt32((*int32)(&s.state), int32(from), int32(to)) {
		return errs.B().Code(errs.LifecycleError).
			Msgf("cannot move to %s: server is %s, not %s", to, state(atomic.LoadInt32((*int32)(&s.state))), from).
			Err()
	}
	return nil
}

func (s *Server) currentState() state {
	return state(atomic.LoadInt32((*int32)(&s.state)))
}
