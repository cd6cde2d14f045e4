// Package clock provides an injectable time source for timer-driven code.
//
// The polling scheduler computes its cadence from the local hour and arms
// one-shot timers for backoff and regular polls. Taking a Clock instead of
// calling time.Now and time.AfterFunc directly lets tests pin the hour and
// fire timers deterministically:
//
//	c := clock.Fake(time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC))
//	p := scheduler.New(cfg, fetcher, scheduler.WithClock(c))
//	p.Start()
//	c.WaitForTimers(1)
//	c.Advance(15 * time.Minute)
package clock
