/*
Package log provides structured logging for opsboard using zerolog.

A single global Logger is configured once by Init from the CLI flags and the
configuration file. Components derive child loggers with WithComponent so
every line carries the emitting subsystem:

	logger := log.WithComponent("scheduler")
	logger.Info().Dur("delay", delay).Msg("Next status fetch scheduled")

# Output

Console output (default) is meant for a terminal running `opsboard watch`:

	2026-10-18T14:00:00Z INF Status fetched component=scheduler retry_count=0

JSON output (--json-logs) is meant for the long-running `opsboard serve`
process behind a log shipper:

	{"level":"info","component":"api","path":"/api/status","status":200,"time":"2026-10-18T14:00:00Z"}

# Levels

  - debug: probe stderr, individual parsed lines, timer bookkeeping
  - info: fetch results, server lifecycle
  - warn: fallbacks substituted, retries scheduled
  - error: failures that leave the process unable to serve

Superseded (aborted) status fetches are never logged as failures.
*/
package log
