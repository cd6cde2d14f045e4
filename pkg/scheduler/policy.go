package scheduler

import (
	"time"

	"github.com/cuemby/opsboard/pkg/config"
)

// Window names the part of the day that decides the polling cadence
type Window string

const (
	WindowWorking   Window = "working"
	WindowOvernight Window = "overnight"
)

// Policy holds the timing constants of a Poller
type Policy struct {
	// ShortInterval applies inside the working window
	ShortInterval time.Duration

	// LongInterval applies overnight
	LongInterval time.Duration

	// WorkingStart and WorkingEnd bound the working window as local hours,
	// start inclusive and end exclusive
	WorkingStart int
	WorkingEnd   int

	// Align snaps short-interval delays to the next wall-clock multiple
	// of ShortInterval
	Align bool

	// MaxRetries bounds the fast retries after consecutive failures
	MaxRetries int

	// RetryBase is the first retry delay; each further retry doubles it
	RetryBase time.Duration

	// FetchTimeout caps one fetch. Zero disables the cap.
	FetchTimeout time.Duration
}

// DefaultPolicy returns the standard cadence: 15 minutes from 06:00 to
// 23:00 aligned to the quarter hour, 3 hours overnight, three retries
// starting at 1.5s
func DefaultPolicy() Policy {
	return Policy{
		ShortInterval: config.DefaultShortInterval,
		LongInterval:  config.DefaultLongInterval,
		WorkingStart:  config.DefaultWorkingStart,
		WorkingEnd:    config.DefaultWorkingEnd,
		Align:         true,
		MaxRetries:    config.DefaultMaxRetries,
		RetryBase:     config.DefaultRetryBaseDelay,
		FetchTimeout:  config.DefaultFetchTimeout,
	}
}

// PolicyFromConfig builds a Policy from a normalized poll configuration
func PolicyFromConfig(c config.PollConfig) Policy {
	return Policy{
		ShortInterval: c.ShortInterval,
		LongInterval:  c.LongInterval,
		WorkingStart:  c.WorkingStart,
		WorkingEnd:    c.WorkingEnd,
		Align:         c.Align(),
		MaxRetries:    c.Retries(),
		RetryBase:     c.RetryBaseDelay,
		FetchTimeout:  c.FetchTimeout,
	}
}

// WindowAt returns the window containing t, judged by t's own location
func (p Policy) WindowAt(t time.Time) Window {
	hour := t.Hour()
	if hour >= p.WorkingStart && hour < p.WorkingEnd {
		return WindowWorking
	}
	return WindowOvernight
}

// IntervalAt returns the nominal interval for the window containing t
func (p Policy) IntervalAt(t time.Time) time.Duration {
	if p.WindowAt(t) == WindowWorking {
		return p.ShortInterval
	}
	return p.LongInterval
}

// NextDelay returns how long to wait after a cycle completing at t
func (p Policy) NextDelay(t time.Time) time.Duration {
	if p.WindowAt(t) == WindowOvernight {
		return p.LongInterval
	}
	if !p.Align {
		return p.ShortInterval
	}
	return alignedDelay(t, p.ShortInterval)
}

// maxBackoffShift bounds the doubling so the delay cannot overflow
const maxBackoffShift = 16

// RetryDelay returns the backoff before retry number n (1-based):
// RetryBase, 2×RetryBase, 4×RetryBase, … saturating after maxBackoffShift
// doublings
func (p Policy) RetryDelay(n int) time.Duration {
	shift := min(max(n, 1)-1, maxBackoffShift)
	return p.RetryBase * time.Duration(1<<shift)
}

// alignedDelay returns the time until the next multiple of d counted from
// local midnight, strictly after t
func alignedDelay(t time.Time, d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	y, m, day := t.Date()
	midnight := time.Date(y, m, day, 0, 0, 0, 0, t.Location())
	elapsed := t.Sub(midnight)
	next := (elapsed/d + 1) * d
	return next - elapsed
}
