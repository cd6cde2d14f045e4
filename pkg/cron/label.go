package cron

import (
	"fmt"
	"strings"
)

// Schedule kinds reported by the gateway
const (
	KindCron  = "cron"
	KindEvery = "every"
)

// UnknownLabel is shown for schedules of an unrecognized shape
const UnknownLabel = "Unknown"

// Schedule is a job's schedule descriptor as the gateway reports it
type Schedule struct {
	Kind    string `json:"kind"`
	Expr    string `json:"expr,omitempty"`
	EveryMs *int64 `json:"everyMs,omitempty"`
}

// knownExpressions maps the cron expressions used by the standing jobs to
// their canonical labels. Anything else is shown verbatim.
var knownExpressions = map[string]string{
	"0 7 * * *":    "Daily: 7:00 AM",
	"0 9 * * *":    "Daily: 9:00 AM",
	"0 20 * * *":   "Daily: 8:00 PM",
	"0 0 * * *":    "Daily: Midnight",
	"30 8 * * 1":   "Weekly: Mon 8:30 AM",
	"0 */4 * * *":  "Every 4h",
	"*/30 * * * *": "Every 30 min",
}

// Label renders a schedule as a short human-readable string
func Label(s Schedule) string {
	switch s.Kind {
	case KindCron:
		return cronLabel(s.Expr)
	case KindEvery:
		if s.EveryMs == nil {
			return UnknownLabel
		}
		return EveryLabel(*s.EveryMs)
	default:
		return UnknownLabel
	}
}

func cronLabel(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return UnknownLabel
	}
	if label, ok := knownExpressions[expr]; ok {
		return label
	}
	return "Cron: " + expr
}

// EveryLabel renders a fixed-interval period using plain integer division:
// under an hour in minutes, under a day in hours, otherwise in days
func EveryLabel(everyMs int64) string {
	if everyMs <= 0 {
		return UnknownLabel
	}

	// sub-minute periods truncate to "Every 0 min"
	minutes := everyMs / 60_000
	switch {
	case minutes < 60:
		return fmt.Sprintf("Every %d min", minutes)
	case minutes < 1440:
		return fmt.Sprintf("Every %dh", minutes/60)
	default:
		days := minutes / 1440
		if days == 1 {
			return "Every 1 day"
		}
		return fmt.Sprintf("Every %d days", days)
	}
}
