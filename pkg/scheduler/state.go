package scheduler

import (
	"time"

	"github.com/cuemby/opsboard/pkg/types"
)

// Phase is the lifecycle position of a Poller
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseSuccess   Phase = "success"
	PhaseFailed    Phase = "failed"
	PhaseScheduled Phase = "scheduled"
	PhaseSuspended Phase = "suspended"
	PhaseDisposed  Phase = "disposed"
)

// PollState is the observable state of a polling session. LastSnapshot is
// kept across failures so stale data stays on screen; it must not be
// modified by callers.
type PollState struct {
	Phase           Phase
	LastSnapshot    *types.StatusSnapshot
	LastError       string
	LastFetchedAt   time.Time
	NextScheduledAt time.Time
	RetryCount      int
	Window          Window
	Refreshing      bool
	Visible         bool
}

// HasData reports whether a snapshot has ever been received
func (s PollState) HasData() bool {
	return s.LastSnapshot != nil
}
