// Package metrics exposes the server's per-call counters and latency
// histogram via the standard Prometheus client, scraped through
// promhttp.Handler mounted at /debug/metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Gather returns the current metric families, mainly for tests that want to
// assert on counter values without standing up an HTTP scrape.
func Gather() ([]*dto.MetricFamily, error) {
	return prometheus.DefaultGatherer.Gather()
}

// CallBegin records the start of a dispatch to object.method.
func CallBegin(object, method string) {
	callCountTotal.Add(1)
	callCount.WithLabelValues(object, method).Add(1)
}

// CallEnd records a completed dispatch's latency and outcome, where code is
// one of "ok", "exception", or an errs.ErrCode string for a dispatcher-level
// failure.
func CallEnd(object, method string, durSecs float64, code string) {
	callDuration.WithLabelValues(object, method, code).Observe(durSecs)
}

// UnknownObject records a request for an object id not in the registry.
func UnknownObject(objectID string) {
	unknownObject.WithLabelValues(objectID).Add(1)
}

func init() {
	prometheus.MustRegister(callCountTotal, callCount, callDuration, unknownObject)
}

var (
	callCountTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rpc_call_total",
		Help: "Total dispatched calls across all objects",
	})

	callCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_call_object_total",
		Help: "Dispatched calls per object and method",
	}, []string{"object", "method"})

	callDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rpc_call_duration_seconds",
		Help:    "Dispatch latency distribution per object and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"object", "method", "code"})

	unknownObject = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_unknown_object_total",
		Help: "Requests for an object id not present in the registry",
	}, []string{"object"})
)
