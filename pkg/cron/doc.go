/*
Package cron adapts the local scheduling gateway's job listing into the
automation column of a status snapshot.

Gateway.List calls

	GET {url}/cron?action=list&includeDisabled=false
	Authorization: Bearer <contents of TokenFile>

and expects

	{"jobs": [{"name": "...", "enabled": true,
	           "schedule": {"kind": "cron", "expr": "0 7 * * *"}},
	          {"name": "...", "enabled": true,
	           "schedule": {"kind": "every", "everyMs": 1800000}}]}

Only enabled jobs are kept, in gateway order, at most eight. Jobs without a
name are shown as "Unnamed Task".

# Labels

Label turns a schedule into a short string:

	cron  "0 7 * * *"      → "Daily: 7:00 AM"   (one of seven known expressions)
	cron  "15 3 * * 2"     → "Cron: 15 3 * * 2" (anything else, verbatim)
	every 1_800_000 ms     → "Every 30 min"
	every 7_200_000 ms     → "Every 2h"
	every 86_400_000 ms    → "Every 1 day"
	every 172_800_000 ms   → "Every 2 days"
	anything else          → "Unknown"

No general cron-to-English translation is attempted.

# Failure Handling

Any failure (unreadable or empty token file, connection refused, timeout,
non-2xx status, malformed JSON) wraps ErrGatewayUnavailable and List
substitutes FallbackAutomations, so the board stays populated while the
gateway is down. Report.Source tells the caller which path was taken.
*/
package cron
