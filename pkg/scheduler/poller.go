package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/opsboard/pkg/clock"
	"github.com/cuemby/opsboard/pkg/events"
	"github.com/cuemby/opsboard/pkg/log"
	"github.com/cuemby/opsboard/pkg/types"
)

// minDelay keeps a computed delay from arming a zero or negative timer
const minDelay = time.Millisecond

// Fetcher retrieves one status snapshot. Implementations must return
// promptly once ctx is done.
type Fetcher interface {
	Fetch(ctx context.Context) (*types.StatusSnapshot, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context) (*types.StatusSnapshot, error)

// Fetch calls f(ctx)
func (f FetcherFunc) Fetch(ctx context.Context) (*types.StatusSnapshot, error) {
	return f(ctx)
}

// Option configures a Poller
type Option func(*Poller)

// WithClock replaces the real clock
func WithClock(c clock.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// WithBroker publishes state changes on b
func WithBroker(b *events.Broker) Option {
	return func(p *Poller) { p.broker = b }
}

// WithLocation sets the time zone used to decide the polling window
func WithLocation(loc *time.Location) Option {
	return func(p *Poller) { p.loc = loc }
}

// Poller keeps a status snapshot fresh. It fetches immediately on Start,
// then on a cadence that depends on the local hour, retries failures with
// exponential backoff and pauses while the view is hidden.
//
// At most one fetch is in flight. Starting a new fetch cancels the previous
// one, and a superseded fetch never changes state.
type Poller struct {
	fetcher Fetcher
	policy  Policy
	clock   clock.Clock
	broker  *events.Broker
	loc     *time.Location
	logger  zerolog.Logger

	mu       sync.Mutex
	state    PollState
	started  bool
	disposed bool

	// gen identifies the current fetch; a completion carrying an older
	// generation is discarded
	gen    uint64
	cancel context.CancelFunc

	// timerGen invalidates timers that fire after being replaced
	timer    *clock.Timer
	timerGen uint64

	ctx      context.Context
	stopCtx  context.CancelFunc
	inflight sync.WaitGroup
}

// New creates a Poller in the idle phase. Nothing happens until Start.
func New(policy Policy, fetcher Fetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher: fetcher,
		policy:  policy,
		clock:   clock.Real(),
		loc:     time.Local,
		logger:  log.WithComponent("scheduler"),
		state: PollState{
			Phase:   PhaseIdle,
			Visible: true,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.ctx, p.stopCtx = context.WithCancel(context.Background())
	return p
}

// Start begins polling with an immediate fetch. Calling it again, or after
// Stop, does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed || p.started {
		return
	}
	p.started = true

	if !p.state.Visible {
		p.state.Phase = PhaseSuspended
		return
	}
	p.fetchLocked("start")
}

// Retry resets the failure count, drops any pending timer, aborts the
// in-flight fetch and fetches immediately
func (p *Poller) Retry() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return
	}
	p.started = true
	p.state.RetryCount = 0
	p.fetchLocked("retry")
}

// SetVisible pauses polling when the view is hidden and fetches
// immediately when it becomes visible again
func (p *Poller) SetVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed || p.state.Visible == visible {
		return
	}
	p.state.Visible = visible

	if !visible {
		p.abortLocked()
		p.state.Phase = PhaseSuspended
		p.publish(events.EventPollSuspended, "polling paused while hidden", nil)
		return
	}

	if p.started {
		p.fetchLocked("visible")
	}
}

// Stop cancels the pending timer and the in-flight fetch and waits for the
// fetch goroutine to exit. The state is final afterwards. Safe to call more
// than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	p.abortLocked()
	p.state.Phase = PhaseDisposed
	p.publish(events.EventPollDisposed, "poller stopped", nil)
	p.mu.Unlock()

	p.stopCtx()
	p.inflight.Wait()
}

// State returns a copy of the current state
func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) now() time.Time {
	return p.clock.Now().In(p.loc)
}

// fetchLocked supersedes whatever is pending and starts a new fetch
func (p *Poller) fetchLocked(trigger string) {
	p.abortLocked()

	p.gen++
	gen := p.gen

	var ctx context.Context
	var cancel context.CancelFunc
	if p.policy.FetchTimeout > 0 {
		ctx, cancel = context.WithTimeout(p.ctx, p.policy.FetchTimeout)
	} else {
		ctx, cancel = context.WithCancel(p.ctx)
	}
	p.cancel = cancel

	p.state.Phase = PhaseLoading
	p.state.Refreshing = p.state.LastSnapshot != nil
	p.state.NextScheduledAt = time.Time{}
	p.publish(events.EventPollFetching, "fetching status", map[string]string{"trigger": trigger})

	p.inflight.Add(1)
	go p.run(ctx, cancel, gen)
}

func (p *Poller) run(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer p.inflight.Done()

	snapshot, err := p.fetcher.Fetch(ctx)
	ctxErr := ctx.Err()
	cancel()

	p.complete(gen, snapshot, err, ctxErr)
}

func (p *Poller) complete(gen uint64, snapshot *types.StatusSnapshot, err, ctxErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed || gen != p.gen {
		p.logger.Debug().Uint64("generation", gen).Msg("Discarding superseded fetch")
		return
	}
	p.cancel = nil

	if errors.Is(ctxErr, context.Canceled) {
		return
	}

	now := p.now()
	p.state.Refreshing = false
	p.state.Window = p.policy.WindowAt(now)

	if err == nil && snapshot == nil {
		err = errors.New("status fetch returned no snapshot")
	}
	if err != nil && errors.Is(ctxErr, context.DeadlineExceeded) {
		err = fmt.Errorf("status fetch timed out after %s", p.policy.FetchTimeout)
	}

	if err == nil {
		p.state.Phase = PhaseSuccess
		p.state.LastSnapshot = snapshot
		p.state.LastFetchedAt = now
		p.state.LastError = ""
		p.state.RetryCount = 0
		p.publish(events.EventPollSucceeded, "status updated", nil)
		p.logger.Debug().Time("generated_at", snapshot.GeneratedAt).Msg("Status fetched")

		p.scheduleLocked(p.policy.NextDelay(now))
		return
	}

	p.state.Phase = PhaseFailed
	p.state.LastError = err.Error()

	var delay time.Duration
	if p.state.RetryCount < p.policy.MaxRetries {
		p.state.RetryCount++
		delay = p.policy.RetryDelay(p.state.RetryCount)
	} else {
		delay = p.policy.NextDelay(now)
	}

	p.publish(events.EventPollFailed, p.state.LastError, map[string]string{
		"error":      p.state.LastError,
		"retryCount": strconv.Itoa(p.state.RetryCount),
	})
	p.logger.Warn().
		Err(err).
		Int("retry_count", p.state.RetryCount).
		Dur("next_in", delay).
		Msg("Status fetch failed")

	p.scheduleLocked(delay)
}

func (p *Poller) scheduleLocked(delay time.Duration) {
	if !p.state.Visible {
		return
	}
	delay = max(delay, minDelay)

	p.stopTimerLocked()
	p.timerGen++
	tg := p.timerGen

	p.state.Phase = PhaseScheduled
	p.state.NextScheduledAt = p.now().Add(delay)
	p.timer = p.clock.AfterFunc(delay, func() { p.onTimer(tg) })

	p.publish(events.EventPollScheduled, "next fetch scheduled", map[string]string{
		"delay": delay.String(),
		"at":    p.state.NextScheduledAt.Format(time.RFC3339),
	})
}

func (p *Poller) onTimer(tg uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed || tg != p.timerGen || !p.state.Visible {
		return
	}
	p.timer = nil
	p.fetchLocked("timer")
}

// abortLocked drops the pending timer and cancels the in-flight fetch so
// that its completion is discarded
func (p *Poller) abortLocked() {
	p.stopTimerLocked()
	p.state.NextScheduledAt = time.Time{}
	p.state.Refreshing = false

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
		p.gen++
	}
}

func (p *Poller) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.timerGen++
}

func (p *Poller) publish(t events.EventType, msg string, meta map[string]string) {
	if p.broker == nil {
		return
	}
	if meta == nil {
		meta = map[string]string{}
	}
	meta["phase"] = string(p.state.Phase)
	p.broker.Publish(&events.Event{
		Type:      t,
		Timestamp: p.clock.Now(),
		Message:   msg,
		Metadata:  meta,
	})
}
