/*
Package types defines the data exchanged between the opsboard status server
and its polling clients.

# Core Types

  - StatusSnapshot: one complete payload produced by the status aggregator.
    It carries the generation timestamp, the automation list, the active and
    completed task lists, the health column and free-form notes.
  - HealthRecord: a service name with its Level.
  - Level: ok, warning or issue. Levels are strictly ordered by severity, so
    callers can compute the overall state with Level.Worse or
    StatusSnapshot.WorstLevel.
  - Automation: a scheduled job name with a human-readable next-run label.
  - Notes: an ordered string map. JSON encoding preserves insertion order,
    so the board renders notes in the order the aggregator wrote them.

# JSON Shape

	{
	  "generatedAt": "2026-10-18T14:00:00Z",
	  "automations": [{"name": "Daily Morning Brief", "nextRunLabel": "Daily: 7:00 AM"}],
	  "activeTasks": ["Building Mission Control app"],
	  "completedTasks": ["Updated morning brief format"],
	  "healthChecks": [{"serviceName": "Meta Ads API", "level": "ok"}],
	  "notes": {"cronApi": "OpenClaw cron API"}
	}

A snapshot never carries an empty healthChecks list; the aggregator
substitutes a fallback table when the probe yields nothing.
*/
package types
