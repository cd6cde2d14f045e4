package health

import (
	"context"
	"time"

	"github.com/cuemby/opsboard/pkg/types"
)

// RawOutput is the unstructured text a probe printed on stdout
type RawOutput string

// Invoker runs the external health-check process
type Invoker interface {
	// Invoke runs the probe once. A non-nil error is always a *ProbeFailure.
	Invoke(ctx context.Context) (RawOutput, error)
}

// Parser turns probe output into health records. Implementations may be
// swapped (text scraping today, a structured contract later) without
// touching the aggregator or the scheduler.
type Parser interface {
	Parse(raw RawOutput) ([]types.HealthRecord, error)
}

// Tier names which path produced a set of health records
type Tier string

const (
	// TierLive means the records were parsed from probe output
	TierLive Tier = "live"

	// TierNoData means the probe ran but no known service was found
	TierNoData Tier = "no-data"

	// TierCheckFailed means the probe or the parser failed
	TierCheckFailed Tier = "check-failed"
)

// Report is the outcome of one Source.Records call
type Report struct {
	Records   []types.HealthRecord
	Tier      Tier
	Reason    FailureReason // set when Tier is TierCheckFailed because the probe failed
	CheckedAt time.Time
	Duration  time.Duration
}

// Healthy reports whether the records came from a live probe run
func (r Report) Healthy() bool {
	return r.Tier == TierLive
}
