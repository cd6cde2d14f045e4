/*
Package scheduler keeps a status snapshot fresh on an adaptive cadence.

A Poller owns one polling session. It fetches as soon as it is started and
afterwards re-arms a single one-shot timer after every completed fetch.

# State Machine

	        Start / Retry / visible
	Idle ─────────────────────────▶ Loading ◀──────────────┐
	                                  │                    │ timer
	                     ┌────────────┴──────────┐         │
	                     ▼                       ▼         │
	                  Success                  Failed      │
	                     │                       │         │
	                     └──────────┬────────────┘         │
	                                ▼                      │
	                            Scheduled ─────────────────┘

	hidden: any phase ──▶ Suspended       Stop: any phase ──▶ Disposed

# Cadence

The delay is chosen when a fetch completes, from the clock reading at that
moment:

  - Success inside the working window (06:00 to 23:00 local): the short
    interval, 15 minutes. With Policy.Align the delay runs to the next
    quarter-hour mark strictly after now, so a fetch completing at 14:00:00
    is followed by one at 14:15:00.
  - Success outside the window: the long interval, 3 hours.
  - Failure with RetryCount below MaxRetries: RetryCount is incremented and
    the delay is RetryBase × 2^(RetryCount-1), i.e. 1.5s, 3s, 6s.
  - Failure with retries exhausted: the regular interval. RetryCount stays
    at its maximum until a success or a manual Retry.

# Cancellation

Every fetch gets its own context and generation number. Retry, a
visibility change and Stop cancel the in-flight context and bump the
generation, so a superseded completion is dropped without touching state
and without counting as a failure. A fetch that outlives
Policy.FetchTimeout is a real failure.

Stop is terminal: it cancels the timer and the in-flight fetch, waits for
the fetch goroutine and leaves the state frozen in PhaseDisposed.

# Observing

State returns a copy of PollState. With WithBroker every transition is also
published as an events.Event (poll.fetching, poll.succeeded, poll.failed,
poll.scheduled, poll.suspended, poll.disposed).

	p := scheduler.New(scheduler.DefaultPolicy(), client.NewClient(url),
		scheduler.WithBroker(broker))
	p.Start()
	defer p.Stop()
*/
package scheduler
