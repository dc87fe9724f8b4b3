package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// Provider calls by outcome kind. Watch for: one provider stuck on timeout or other.
	ProviderCallsTotal *prometheus.CounterVec

	// Provider call latency, including calls cut off by the timeout.
	ProviderCallDuration *prometheus.HistogramVec

	// Aggregations by operation (current, forecast) and result (ok, all_not_found, all_other_failure).
	AggregationsTotal *prometheus.CounterVec

	// Probe runs by result.
	ProbeRunsTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	ProviderCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "providerCallsTotal",
			Help: "Total number of upstream provider calls by outcome kind",
		},
		[]string{"provider", "operation", "kind"},
	)
	ProviderCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "providerCallDurationSeconds",
			Help:    "Upstream provider call latency in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "operation"},
	)
	AggregationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregationsTotal",
			Help: "Total number of aggregations by operation and result",
		},
		[]string{"operation", "result"},
	)
	ProbeRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probeRunsTotal",
			Help: "Total number of provider health probes by result",
		},
		[]string{"result"},
	)

	registry.MustRegister(
		ProviderCallsTotal, ProviderCallDuration,
		AggregationsTotal, ProbeRunsTotal,
	)
}

// RecordProviderCall records one bounded provider call.
func RecordProviderCall(provider, operation, kind string, took time.Duration) {
	ProviderCallsTotal.WithLabelValues(provider, operation, kind).Inc()
	ProviderCallDuration.WithLabelValues(provider, operation).Observe(took.Seconds())
}

// RecordAggregation records the final result of one aggregation.
func RecordAggregation(operation, result string) {
	AggregationsTotal.WithLabelValues(operation, result).Inc()
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
