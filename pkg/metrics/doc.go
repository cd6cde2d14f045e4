/*
Package metrics provides Prometheus metrics and the component health
registry for opsboard.

All collectors are package-level variables registered with the default
registry at init and exposed by Handler on /metrics.

# Metrics

Health probe:

	opsboard_probe_invocations_total{outcome}   success, timeout, exit, spawn, no-command, canceled
	opsboard_probe_duration_seconds             histogram
	opsboard_health_source_total{tier}          live, no-data, check-failed

Automation gateway:

	opsboard_gateway_requests_total{outcome}    success, fallback
	opsboard_gateway_request_duration_seconds   histogram

Aggregator and API:

	opsboard_snapshots_total
	opsboard_snapshot_duration_seconds
	opsboard_api_requests_total{path,status}
	opsboard_api_request_duration_seconds{path}
	opsboard_api_rate_limited_total

Poller (sampled by Collector in the watch command):

	opsboard_poll_retry_count
	opsboard_poll_last_success_timestamp_seconds
	opsboard_poll_next_fetch_timestamp_seconds
	opsboard_poll_failing
	opsboard_poll_visible

# Timing

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SnapshotDuration)

# Component Health

Components report through RegisterComponent and UpdateComponent. The api
component is critical: while it is unhealthy /health reports "unhealthy"
(503) and /ready reports "not_ready". The probe and gateway components only
degrade /health, since both have fallbacks and the snapshot stays servable.

	metrics.RegisterComponent(metrics.ComponentAPI, true, "serving")
	metrics.UpdateComponent(metrics.ComponentGateway, false, "connection refused")
*/
package metrics
