package server

import (
	"context"
	"time"

	"github.com/speedy-rpc/speedygo/registry"
)

// selfObjectID is the reserved object the server registers itself under,
// per spec.md §4.6, so introspection RPCs don't need a special-cased
// dispatch path.
const selfObjectID = "self"

// registerSelf installs the "self" object exposing list_objects and
// shutdown, grounded on the Python original's Server.diediedie RPC that
// lets a client request orderly shutdown.
func (s *Server) registerSelf() {
	s.registry.Register(selfObjectID, s, registry.Handlers{
		"list_objects": func(ctx context.Context, args []interface{}, kw map[string]interface{}) (interface{}, error) {
			ids := s.registry.Keys()
			out := make([]interface{}, len(ids))
			for i, id := range ids {
				out[i] = id
			}
			return out, nil
		},
		"shutdown": func(ctx context.Context, args []interface{}, kw map[string]interface{}) (interface{}, error) {
			go func() {
				// Give the response a moment to flush before tearing down
				// the listener out from under the connection serving it.
				time.Sleep(10 * time.Millisecond)
				deadline, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = s.Stop(deadline)
			}()
			return true, nil
		},
	})
}
