package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCopiesSample(t *testing.T) {
	fetched := time.Unix(1_760_796_000, 0)
	c := NewCollector(func() PollSample {
		return PollSample{
			RetryCount:      2,
			LastFetchedAt:   fetched,
			NextScheduledAt: fetched.Add(3 * time.Second),
			Failing:         true,
			Visible:         true,
		}
	})

	c.collect()

	assert.Equal(t, 2.0, testutil.ToFloat64(PollRetryCount))
	assert.Equal(t, 1_760_796_000.0, testutil.ToFloat64(PollLastSuccessTimestamp))
	assert.Equal(t, 1_760_796_003.0, testutil.ToFloat64(PollNextFetchTimestamp))
	assert.Equal(t, 1.0, testutil.ToFloat64(PollFailing))
	assert.Equal(t, 1.0, testutil.ToFloat64(PollVisible))
}

func TestCollectorZeroTimes(t *testing.T) {
	c := NewCollector(func() PollSample { return PollSample{} })

	c.collect()

	assert.Equal(t, 0.0, testutil.ToFloat64(PollLastSuccessTimestamp))
	assert.Equal(t, 0.0, testutil.ToFloat64(PollNextFetchTimestamp))
	assert.Equal(t, 0.0, testutil.ToFloat64(PollVisible))
}

func TestCollectorStartStop(t *testing.T) {
	calls := make(chan struct{}, 1)
	c := NewCollector(func() PollSample {
		select {
		case calls <- struct{}{}:
		default:
		}
		return PollSample{}
	})

	c.Start()
	defer c.Stop()

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not sample on start")
	}
}
