package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Probe metrics
	ProbeInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_probe_invocations_total",
			Help: "Total number of health probe invocations by outcome",
		},
		[]string{"outcome"},
	)

	ProbeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "opsboard_probe_duration_seconds",
			Help:    "Health probe wall-clock duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	HealthSourceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_health_source_total",
			Help: "Health column results by tier (live, no-data, check-failed)",
		},
		[]string{"tier"},
	)

	// Gateway metrics
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_gateway_requests_total",
			Help: "Total number of gateway cron listing requests by outcome",
		},
		[]string{"outcome"},
	)

	GatewayRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "opsboard_gateway_request_duration_seconds",
			Help:    "Gateway cron listing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Aggregator metrics
	SnapshotsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "opsboard_snapshots_total",
			Help: "Total number of status snapshots assembled",
		},
	)

	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "opsboard_snapshot_duration_seconds",
			Help:    "Time taken to assemble a status snapshot in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsboard_api_requests_total",
			Help: "Total number of API requests by path and status",
		},
		[]string{"path", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsboard_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	APIRateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "opsboard_api_rate_limited_total",
			Help: "Total number of API requests rejected by the rate limiter",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ProbeInvocationsTotal)
	prometheus.MustRegister(ProbeDuration)
	prometheus.MustRegister(HealthSourceTotal)
	prometheus.MustRegister(GatewayRequestsTotal)
	prometheus.MustRegister(GatewayRequestDuration)
	prometheus.MustRegister(SnapshotsTotal)
	prometheus.MustRegister(SnapshotDuration)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(APIRateLimitedTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
