/*
Package health produces the health column of an opsboard status snapshot.

It runs an external health-check process (the probe), scrapes its
human-readable output into typed records and substitutes a deterministic
fallback table whenever that fails, so the board never shows an empty
health column.

# Architecture

	┌──────────────────────────────────────────────────────────┐
	│                         Source                           │
	│  Records(ctx) Report                                     │
	└─────┬─────────────────────────────┬──────────────────────┘
	      │                             │
	      ▼                             ▼
	┌────────────┐               ┌─────────────┐
	│   Probe    │  RawOutput    │   Parser    │
	│ (Invoker)  │ ────────────▶ │ TextParser  │
	└────────────┘               └─────────────┘
	      │ *ProbeFailure               │ error / panic / no records
	      ▼                             ▼
	┌──────────────────────────────────────────────────────────┐
	│  Resolve: CheckFailedFallback | NoDataFallback | parsed  │
	└──────────────────────────────────────────────────────────┘

# Probe

Probe runs a fixed command in a fixed working directory with a hard
timeout. Failures are reported as *ProbeFailure carrying only a reason code:

  - timeout: the command did not finish within Timeout and was killed
  - exit: the command exited non-zero (ExitCode is set)
  - spawn: the command could not be started
  - no-command: no command is configured
  - canceled: the caller's context was canceled first

Each Invoke spawns one process. Concurrent status requests run independent
probes; there is no shared probe state to guard.

# Parsing

TextParser splits the output into lines and, for each known marker in
order (QuickBooks, GHL, Meta, Gateway), emits one record per line that
contains the marker:

	"Meta API ✅"                      → Meta Ads API                   ok
	"QuickBooks API ... Token Expired" → QuickBooks API - Token Expired warning
	"GHL ⚠️ rate limited"              → GHL CRM - Warning              warning
	"OpenClaw Gateway ❌ down"         → OpenClaw Gateway - Issue       issue

Duplicate lines produce duplicate records. The Parser interface keeps the
matching rules replaceable; a structured probe contract only needs a new
Parser implementation.

# Fallbacks

Two tables with the same four services and levels but different wording:

  - NoDataFallback: the probe ran but matched no known service
  - CheckFailedFallback: the probe failed, or the parser returned an
    error or panicked

Both functions return fresh copies.
*/
package health
