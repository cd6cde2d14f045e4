package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cuemby/opsboard/pkg/clock"
	"github.com/cuemby/opsboard/pkg/cron"
	"github.com/cuemby/opsboard/pkg/health"
	"github.com/cuemby/opsboard/pkg/log"
	"github.com/cuemby/opsboard/pkg/metrics"
	"github.com/cuemby/opsboard/pkg/types"
)

// Note keys, in the order they appear in every snapshot
const (
	NoteCronAPI           = "cronApi"
	NoteBackgroundMonitor = "backgroundMonitor"
	NoteSystemLogs        = "systemLogs"
	NoteHealthEndpoints   = "healthEndpoints"
	NoteHealthSource      = "healthSource"
	NoteAutomationSource  = "automationSource"
)

// HealthSource produces the health column
type HealthSource interface {
	Records(ctx context.Context) health.Report
}

// AutomationSource produces the automations column
type AutomationSource interface {
	List(ctx context.Context) cron.Report
}

// TaskSource produces the time-of-day task lists
type TaskSource interface {
	ActiveTasks(now time.Time) []string
	CompletedTasks(now time.Time) []string
}

// Aggregator composes one StatusSnapshot from its four sources
type Aggregator struct {
	health      HealthSource
	automations AutomationSource
	tasks       TaskSource
	clock       clock.Clock

	mu   sync.Mutex
	last time.Time
}

// NewAggregator creates an aggregator. A nil clock selects the real clock.
func NewAggregator(hs HealthSource, as AutomationSource, ts TaskSource, clk clock.Clock) *Aggregator {
	if clk == nil {
		clk = clock.Real()
	}
	return &Aggregator{
		health:      hs,
		automations: as,
		tasks:       ts,
		clock:       clk,
	}
}

// Snapshot runs the four sub-fetches concurrently and assembles the result
// once all of them have resolved. A failing source contributes its own
// fallback; Snapshot itself never fails.
func (a *Aggregator) Snapshot(ctx context.Context) types.StatusSnapshot {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SnapshotDuration)

	logger := log.WithComponent("aggregator")
	now := a.clock.Now()

	var (
		healthReport health.Report
		cronReport   cron.Report
		active       []string
		completed    []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer recoverInto("health", func() {
			healthReport = health.Report{Records: health.CheckFailedFallback(), Tier: health.TierCheckFailed}
		})
		healthReport = a.health.Records(gctx)
		return nil
	})
	g.Go(func() error {
		defer recoverInto("automations", func() {
			cronReport = cron.Report{Automations: cron.FallbackAutomations(), Source: cron.SourceFallback}
		})
		cronReport = a.automations.List(gctx)
		return nil
	})
	g.Go(func() error {
		defer recoverInto("active tasks", func() { active = nil })
		active = a.tasks.ActiveTasks(now)
		return nil
	})
	g.Go(func() error {
		defer recoverInto("completed tasks", func() { completed = nil })
		completed = a.tasks.CompletedTasks(now)
		return nil
	})
	_ = g.Wait()

	if len(healthReport.Records) == 0 {
		healthReport.Records = health.CheckFailedFallback()
		healthReport.Tier = health.TierCheckFailed
	}

	snapshot := types.StatusSnapshot{
		GeneratedAt:    a.stamp(),
		Automations:    nonNil(cronReport.Automations),
		ActiveTasks:    nonNil(active),
		CompletedTasks: nonNil(completed),
		HealthChecks:   healthReport.Records,
	}
	snapshot.Notes.Set(NoteCronAPI, "OpenClaw cron API")
	snapshot.Notes.Set(NoteBackgroundMonitor, "Background process telemetry")
	snapshot.Notes.Set(NoteSystemLogs, "Completion timestamps from logs")
	snapshot.Notes.Set(NoteHealthEndpoints, "Live health endpoints")
	snapshot.Notes.Set(NoteHealthSource, string(healthReport.Tier))
	snapshot.Notes.Set(NoteAutomationSource, string(cronReport.Source))

	a.recordComponents(healthReport, cronReport)
	metrics.SnapshotsTotal.Inc()

	logger.Debug().
		Str("health_tier", string(healthReport.Tier)).
		Str("automation_source", string(cronReport.Source)).
		Int("health_checks", len(snapshot.HealthChecks)).
		Int("automations", len(snapshot.Automations)).
		Msg("Snapshot assembled")

	return snapshot
}

// stamp returns the generation time, never earlier than the previous one
func (a *Aggregator) stamp() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now().UTC()
	if now.Before(a.last) {
		now = a.last
	}
	a.last = now
	return now
}

func (a *Aggregator) recordComponents(hr health.Report, cr cron.Report) {
	if hr.Tier == health.TierLive {
		metrics.UpdateComponent(metrics.ComponentProbe, true, "")
	} else {
		msg := fmt.Sprintf("serving %s fallback", hr.Tier)
		if hr.Reason != "" {
			msg += fmt.Sprintf(" (%s)", hr.Reason)
		}
		metrics.UpdateComponent(metrics.ComponentProbe, false, msg)
	}

	if cr.Source == cron.SourceLive {
		metrics.UpdateComponent(metrics.ComponentGateway, true, "")
	} else {
		msg := "serving fallback automations"
		if cr.Err != nil {
			msg = cr.Err.Error()
		}
		metrics.UpdateComponent(metrics.ComponentGateway, false, msg)
	}
}

func recoverInto(source string, fallback func()) {
	if r := recover(); r != nil {
		logger := log.WithComponent("aggregator")
		logger.Error().
			Str("source", source).
			Interface("panic", r).
			Msg("Snapshot source panicked, using fallback")
		fallback()
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
