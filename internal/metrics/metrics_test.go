package metrics_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/speedy-rpc/speedygo/internal/metrics"
)

func TestCallCountersAreObservable(t *testing.T) {
	c := qt.New(t)

	metrics.CallBegin("widget", "echo")
	metrics.CallEnd("widget", "echo", 0.01, "ok")
	metrics.UnknownObject("ghost")

	families, err := metrics.Gather()
	c.Assert(err, qt.IsNil)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	c.Assert(names["rpc_call_total"], qt.IsTrue)
	c.Assert(names["rpc_call_object_total"], qt.IsTrue)
	c.Assert(names["rpc_call_duration_seconds"], qt.IsTrue)
	c.Assert(names["rpc_unknown_object_total"], qt.IsTrue)
}
