/*
Package api serves the status snapshot over HTTP.

The package has two halves. Aggregator composes one types.StatusSnapshot
from four independent sources, and Server exposes it as GET /api/status
alongside the operational endpoints.

# Aggregation

	                 Snapshot(ctx)
	                      │
	     ┌────────────┬───┴────────┬────────────────┐
	     ▼            ▼            ▼                ▼
	 health.Source  cron.Gateway  worklog.Active  worklog.Completed
	 (probe+parse)  (HTTP list)   (time of day)   (time gated)
	     │            │            │                │
	     └────────────┴─────┬──────┴────────────────┘
	                        ▼
	              errgroup.Wait (all four)
	                        │
	                        ▼
	   generatedAt + notes + component health + metrics

All four sub-fetches run concurrently and the snapshot is assembled only
after every one has resolved. None of them can fail the snapshot: the
health source substitutes its no-data or check-failed table, the gateway
substitutes its fallback automation list, and a panicking source is
recovered and replaced by the same fallbacks (empty lists for tasks).

generatedAt is taken from the injected clock and never decreases across
snapshots of one Aggregator.

Notes always carry six keys in this order: cronApi, backgroundMonitor,
systemLogs, healthEndpoints, healthSource (live, no-data, check-failed) and
automationSource (live, fallback).

# Endpoints

	GET /api/status   snapshot JSON, query string ignored
	GET /health       component health (probe and gateway degrade it)
	GET /ready        200 once the server is accepting requests
	GET /live         process liveness
	GET /metrics      Prometheus exposition

/api/status responses forbid caching at every layer:

	Cache-Control: no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0
	Pragma: no-cache
	Expires: 0
	Surrogate-Control: no-store
	CDN-Cache-Control: no-store
	Cloudflare-CDN-Cache-Control: no-store
	Vercel-CDN-Cache-Control: no-store

Methods other than GET and HEAD receive 405.

# Middleware

Each route is wrapped with Instrument (request log line plus
opsboard_api_requests_total and opsboard_api_request_duration_seconds) and
ReadOnly. /api/status is additionally throttled by RateLimit, a single
golang.org/x/time/rate token bucket, because every request spawns the
health probe. Rejected requests get 429 with Retry-After: 1.

# Usage

	agg := api.NewAggregator(
		health.NewSource(health.NewProbe(cfg.Probe.Command), nil),
		cron.NewGateway(cfg.Gateway.URL, cfg.Gateway.TokenFile),
		worklog.Default(),
		clock.Real(),
	)
	srv := api.NewServer(cfg.Server, agg)
	go srv.ListenAndServe()
	defer srv.Shutdown(ctx)
*/
package api
