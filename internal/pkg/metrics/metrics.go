package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aave_topup"

var (
	// HTTPRequestsTotal counts value-source requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "endpoint", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	// RPCCallDuration tracks lending pool reads.
	RPCCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "call_duration_seconds",
		Help:      "Duration of lending pool read calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "result"})

	// HealthFactor is the last health factor of each configured address. Saturated no-debt values are not recorded.
	HealthFactor = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "position",
		Name:      "health_factor",
		Help:      "Last observed health factor per monitored address",
	}, []string{"address"})

	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "position",
		Name:      "classifications_total",
		Help:      "Health factor classifications served",
	}, []string{"classification"})

	// JobRegistrations counts scheduler submissions by outcome.
	JobRegistrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "job_registrations_total",
		Help:      "Job registration attempts by outcome",
	}, []string{"outcome"})

	ProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "value_source_probe_duration_seconds",
		Help:      "Duration of value-source preflight probes",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 6, 10},
	})
)

// TrackRPC returns a func that records the elapsed time of an RPC call when invoked with its error.
func TrackRPC(method string) func(err error) {
	start := time.Now()
	return func(err error) {
		result := "ok"
		if err != nil {
			result = "error"
		}
		RPCCallDuration.WithLabelValues(method, result).Observe(time.Since(start).Seconds())
	}
}
