package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/opsboard/pkg/clock"
	"github.com/cuemby/opsboard/pkg/events"
	"github.com/cuemby/opsboard/pkg/types"
)

type fetchReply struct {
	snapshot *types.StatusSnapshot
	err      error
}

type fetchCall struct {
	ctx   context.Context
	reply chan fetchReply
}

func (c *fetchCall) succeed() {
	c.reply <- fetchReply{snapshot: &types.StatusSnapshot{GeneratedAt: time.Now()}}
}

func (c *fetchCall) fail(err error) {
	c.reply <- fetchReply{err: err}
}

// scriptedFetcher hands every fetch to the test, which decides the outcome
type scriptedFetcher struct {
	calls chan *fetchCall
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{calls: make(chan *fetchCall, 8)}
}

func (f *scriptedFetcher) Fetch(ctx context.Context) (*types.StatusSnapshot, error) {
	call := &fetchCall{ctx: ctx, reply: make(chan fetchReply, 1)}
	f.calls <- call
	select {
	case r := <-call.reply:
		return r.snapshot, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *scriptedFetcher) next(t *testing.T) *fetchCall {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return nil
	}
}

func (f *scriptedFetcher) none(t *testing.T) {
	t.Helper()
	select {
	case <-f.calls:
		t.Fatal("unexpected fetch")
	case <-time.After(50 * time.Millisecond):
	}
}

func waitForTimer(t *testing.T, c *clock.FakeClock) time.Time {
	t.Helper()
	done := make(chan struct{})
	go func() {
		c.WaitForTimers(1)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a timer")
	}
	deadline, ok := c.NextDeadline()
	require.True(t, ok)
	return deadline
}

var errUnavailable = errors.New("status fetch failed (503)")

func newTestPoller(start time.Time, opts ...Option) (*Poller, *scriptedFetcher, *clock.FakeClock) {
	fake := clock.Fake(start)
	fetcher := newScriptedFetcher()
	opts = append([]Option{WithClock(fake), WithLocation(time.UTC)}, opts...)
	return New(DefaultPolicy(), fetcher, opts...), fetcher, fake
}

func TestStartFetchesImmediately(t *testing.T) {
	p, fetcher, _ := newTestPoller(at(14, 0, 0))
	defer p.Stop()

	assert.Equal(t, PhaseIdle, p.State().Phase)

	p.Start()
	assert.Equal(t, PhaseLoading, p.State().Phase)
	assert.False(t, p.State().Refreshing)
	fetcher.next(t)

	p.Start()
	fetcher.none(t)
}

func TestSuccessSchedulesNextQuarterHour(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(14, 0, 0))
	defer p.Stop()

	p.Start()
	fetcher.next(t).succeed()

	assert.Equal(t, at(14, 15, 0), waitForTimer(t, fake))

	state := p.State()
	assert.Equal(t, PhaseScheduled, state.Phase)
	assert.Equal(t, at(14, 15, 0), state.NextScheduledAt)
	assert.Equal(t, at(14, 0, 0), state.LastFetchedAt)
	assert.Equal(t, WindowWorking, state.Window)
	assert.True(t, state.HasData())
	assert.Empty(t, state.LastError)

	fake.Advance(15 * time.Minute)
	fetcher.next(t)
	assert.True(t, p.State().Refreshing)
}

func TestOvernightSchedulesThreeHours(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(2, 0, 0))
	defer p.Stop()

	p.Start()
	fetcher.next(t).succeed()

	assert.Equal(t, at(5, 0, 0), waitForTimer(t, fake))
	assert.Equal(t, WindowOvernight, p.State().Window)
}

func TestIntervalEvaluatedAtCompletion(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(22, 58, 0))
	defer p.Stop()

	p.Start()
	call := fetcher.next(t)
	fake.Advance(4 * time.Minute)
	call.succeed()

	assert.Equal(t, at(23, 2, 0).Add(3*time.Hour), waitForTimer(t, fake))
}

func TestBackoffSequence(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(14, 0, 0))
	defer p.Stop()

	p.Start()
	now := at(14, 0, 0)

	for i, delay := range []time.Duration{1500 * time.Millisecond, 3 * time.Second, 6 * time.Second} {
		fetcher.next(t).fail(errUnavailable)

		deadline := waitForTimer(t, fake)
		assert.Equal(t, now.Add(delay), deadline, "retry %d", i+1)

		state := p.State()
		assert.Equal(t, i+1, state.RetryCount)
		assert.Equal(t, "status fetch failed (503)", state.LastError)

		fake.Advance(delay)
		now = now.Add(delay)
	}

	// retries exhausted: back to the regular cadence, count kept
	fetcher.next(t).fail(errUnavailable)
	assert.Equal(t, at(14, 15, 0), waitForTimer(t, fake))
	assert.Equal(t, 3, p.State().RetryCount)

	fake.Advance(at(14, 15, 0).Sub(fake.Now()))
	fetcher.next(t).succeed()
	waitForTimer(t, fake)

	state := p.State()
	assert.Equal(t, 0, state.RetryCount)
	assert.Empty(t, state.LastError)
}

func TestFailureKeepsStaleSnapshot(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(14, 0, 0))
	defer p.Stop()

	p.Start()
	fetcher.next(t).succeed()
	waitForTimer(t, fake)
	first := p.State().LastSnapshot

	fake.Advance(15 * time.Minute)
	fetcher.next(t).fail(errUnavailable)
	waitForTimer(t, fake)

	state := p.State()
	assert.Same(t, first, state.LastSnapshot)
	assert.Equal(t, at(14, 0, 0), state.LastFetchedAt)
	assert.Equal(t, "status fetch failed (503)", state.LastError)
}

func TestRetryAbortsInFlightFetch(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(14, 0, 0))
	defer p.Stop()

	p.Start()
	first := fetcher.next(t)

	p.Retry()
	second := fetcher.next(t)

	select {
	case <-first.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded fetch was not canceled")
	}

	first.fail(errUnavailable)
	second.succeed()
	waitForTimer(t, fake)

	state := p.State()
	assert.Equal(t, PhaseScheduled, state.Phase)
	assert.Empty(t, state.LastError)
	assert.Equal(t, 0, state.RetryCount)
}

func TestRetryResetsCountAndCancelsTimer(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(14, 0, 0))
	defer p.Stop()

	p.Start()
	fetcher.next(t).fail(errUnavailable)
	waitForTimer(t, fake)
	fake.Advance(1500 * time.Millisecond)
	fetcher.next(t).fail(errUnavailable)
	waitForTimer(t, fake)
	require.Equal(t, 2, p.State().RetryCount)

	p.Retry()
	assert.Equal(t, 0, p.State().RetryCount)
	assert.Equal(t, 0, fake.PendingCount())

	fetcher.next(t).fail(errUnavailable)
	assert.Equal(t, fake.Now().Add(1500*time.Millisecond), waitForTimer(t, fake))
	assert.Equal(t, 1, p.State().RetryCount)
}

func TestHiddenSuspendsPolling(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(14, 0, 0))
	defer p.Stop()

	p.Start()
	fetcher.next(t).succeed()
	waitForTimer(t, fake)

	p.SetVisible(false)
	state := p.State()
	assert.Equal(t, PhaseSuspended, state.Phase)
	assert.False(t, state.Visible)
	assert.True(t, state.NextScheduledAt.IsZero())
	assert.Equal(t, 0, fake.PendingCount())

	fake.Advance(time.Hour)
	fetcher.none(t)

	p.SetVisible(true)
	fetcher.next(t)
	assert.Equal(t, PhaseLoading, p.State().Phase)
}

func TestHiddenAbortsInFlightSilently(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(14, 0, 0))
	defer p.Stop()

	p.Start()
	call := fetcher.next(t)

	p.SetVisible(false)
	<-call.ctx.Done()

	time.Sleep(50 * time.Millisecond)
	state := p.State()
	assert.Equal(t, PhaseSuspended, state.Phase)
	assert.Empty(t, state.LastError)
	assert.Equal(t, 0, state.RetryCount)
	assert.Equal(t, 0, fake.PendingCount())
}

func TestStartWhileHiddenWaitsForVisibility(t *testing.T) {
	p, fetcher, _ := newTestPoller(at(14, 0, 0))
	defer p.Stop()

	p.SetVisible(false)
	p.Start()
	fetcher.none(t)
	assert.Equal(t, PhaseSuspended, p.State().Phase)

	p.SetVisible(true)
	fetcher.next(t)
}

func TestStopIsTerminal(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(14, 0, 0))

	p.Start()
	call := fetcher.next(t)

	p.Stop()
	p.Stop()

	select {
	case <-call.ctx.Done():
	default:
		t.Fatal("in-flight fetch not canceled by Stop")
	}

	before := p.State()
	assert.Equal(t, PhaseDisposed, before.Phase)

	p.Start()
	p.Retry()
	p.SetVisible(false)
	p.SetVisible(true)
	fake.Advance(24 * time.Hour)

	fetcher.none(t)
	assert.Equal(t, before, p.State())
	assert.Equal(t, 0, fake.PendingCount())
}

func TestStopDiscardsLateCompletion(t *testing.T) {
	fake := clock.Fake(at(14, 0, 0))
	release := make(chan struct{})
	fetcher := FetcherFunc(func(ctx context.Context) (*types.StatusSnapshot, error) {
		<-release
		return &types.StatusSnapshot{}, nil
	})
	p := New(DefaultPolicy(), fetcher, WithClock(fake), WithLocation(time.UTC))

	p.Start()
	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	// Stop waits for the fetch goroutine
	select {
	case <-stopped:
		t.Fatal("Stop returned before the fetch goroutine exited")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-stopped

	state := p.State()
	assert.Equal(t, PhaseDisposed, state.Phase)
	assert.False(t, state.HasData())
	assert.Equal(t, 0, fake.PendingCount())
}

func TestFetchTimeoutIsFailure(t *testing.T) {
	fake := clock.Fake(at(14, 0, 0))
	policy := DefaultPolicy()
	policy.FetchTimeout = 20 * time.Millisecond

	fetcher := FetcherFunc(func(ctx context.Context) (*types.StatusSnapshot, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	p := New(policy, fetcher, WithClock(fake), WithLocation(time.UTC))
	defer p.Stop()

	p.Start()
	assert.Equal(t, at(14, 0, 0).Add(1500*time.Millisecond), waitForTimer(t, fake))

	state := p.State()
	assert.Equal(t, 1, state.RetryCount)
	assert.Contains(t, state.LastError, "timed out")
}

func TestNilSnapshotIsFailure(t *testing.T) {
	fake := clock.Fake(at(14, 0, 0))
	fetcher := FetcherFunc(func(context.Context) (*types.StatusSnapshot, error) {
		return nil, nil
	})
	p := New(DefaultPolicy(), fetcher, WithClock(fake), WithLocation(time.UTC))
	defer p.Stop()

	p.Start()
	waitForTimer(t, fake)
	assert.Equal(t, 1, p.State().RetryCount)
	assert.NotEmpty(t, p.State().LastError)
}

func TestStateIsACopy(t *testing.T) {
	p, fetcher, fake := newTestPoller(at(14, 0, 0))
	defer p.Stop()

	p.Start()
	fetcher.next(t).succeed()
	waitForTimer(t, fake)

	state := p.State()
	state.RetryCount = 99
	state.LastError = "mutated"

	assert.Equal(t, 0, p.State().RetryCount)
	assert.Empty(t, p.State().LastError)
}

func TestEventsPublished(t *testing.T) {
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()
	sub := broker.Subscribe()

	p, fetcher, fake := newTestPoller(at(14, 0, 0), WithBroker(broker))

	p.Start()
	fetcher.next(t).succeed()
	waitForTimer(t, fake)
	p.SetVisible(false)
	p.Stop()

	var got []events.EventType
	timeout := time.After(2 * time.Second)
	for len(got) < 5 {
		select {
		case event := <-sub:
			got = append(got, event.Type)
		case <-timeout:
			t.Fatalf("received only %v", got)
		}
	}

	assert.Equal(t, []events.EventType{
		events.EventPollFetching,
		events.EventPollSucceeded,
		events.EventPollScheduled,
		events.EventPollSuspended,
		events.EventPollDisposed,
	}, got)
}
