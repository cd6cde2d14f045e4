package cron

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ms(minutes int64) *int64 {
	v := minutes * 60_000
	return &v
}

func TestLabelKnownExpressions(t *testing.T) {
	assert.Len(t, knownExpressions, 7)

	for expr, label := range knownExpressions {
		assert.Equal(t, label, Label(Schedule{Kind: KindCron, Expr: expr}), expr)
	}
	assert.Equal(t, "Daily: 7:00 AM", Label(Schedule{Kind: KindCron, Expr: "0 7 * * *"}))
}

func TestLabelUnknownCronIsVerbatim(t *testing.T) {
	for _, expr := range []string{"15 3 * * 2", "0 7 * * 1-5", "@hourly", "0 7 * * * *"} {
		assert.Equal(t, "Cron: "+expr, Label(Schedule{Kind: KindCron, Expr: expr}))
	}
}

func TestEveryLabel(t *testing.T) {
	tests := []struct {
		minutes  int64
		expected string
	}{
		{1, "Every 1 min"},
		{30, "Every 30 min"},
		{59, "Every 59 min"},
		{60, "Every 1h"},
		{90, "Every 1h"},
		{120, "Every 2h"},
		{1439, "Every 23h"},
		{1440, "Every 1 day"},
		{2879, "Every 1 day"},
		{2880, "Every 2 days"},
		{10080, "Every 7 days"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d min", tt.minutes), func(t *testing.T) {
			assert.Equal(t, tt.expected, Label(Schedule{Kind: KindEvery, EveryMs: ms(tt.minutes)}))
		})
	}
}

func TestEveryLabelSubMinuteTruncates(t *testing.T) {
	for _, everyMs := range []int64{1, 30_000, 59_999} {
		assert.Equal(t, "Every 0 min", EveryLabel(everyMs), "everyMs %d", everyMs)
	}
	assert.Equal(t, "Every 1 min", EveryLabel(60_000))
}

func TestEveryLabelProperties(t *testing.T) {
	for minutes := int64(1); minutes < 5000; minutes += 7 {
		label := EveryLabel(minutes * 60_000)
		switch {
		case minutes < 60:
			assert.Equal(t, fmt.Sprintf("Every %d min", minutes), label)
		case minutes < 1440:
			assert.Equal(t, fmt.Sprintf("Every %dh", minutes/60), label)
		case minutes/1440 == 1:
			assert.Equal(t, "Every 1 day", label)
		default:
			assert.Equal(t, fmt.Sprintf("Every %d days", minutes/1440), label)
		}
	}
}

func TestLabelUnknownShapes(t *testing.T) {
	zero := int64(0)
	negative := int64(-5)

	tests := []struct {
		name     string
		schedule Schedule
	}{
		{"empty kind", Schedule{}},
		{"unsupported kind", Schedule{Kind: "at", Expr: "2026-10-18T07:00"}},
		{"cron without expr", Schedule{Kind: KindCron}},
		{"every without period", Schedule{Kind: KindEvery}},
		{"every zero", Schedule{Kind: KindEvery, EveryMs: &zero}},
		{"every negative", Schedule{Kind: KindEvery, EveryMs: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, UnknownLabel, Label(tt.schedule))
		})
	}
}
