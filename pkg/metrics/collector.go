package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Poll gauges, sampled by Collector
var (
	PollRetryCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "opsboard_poll_retry_count",
		Help: "Consecutive failed status fetches of the poller",
	})

	PollLastSuccessTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "opsboard_poll_last_success_timestamp_seconds",
		Help: "Unix time of the last successful status fetch",
	})

	PollNextFetchTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "opsboard_poll_next_fetch_timestamp_seconds",
		Help: "Unix time of the next scheduled status fetch, 0 when none is armed",
	})

	PollFailing = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "opsboard_poll_failing",
		Help: "1 when the last status fetch failed",
	})

	PollVisible = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "opsboard_poll_visible",
		Help: "1 while polling is active, 0 while paused",
	})
)

func init() {
	prometheus.MustRegister(PollRetryCount)
	prometheus.MustRegister(PollLastSuccessTimestamp)
	prometheus.MustRegister(PollNextFetchTimestamp)
	prometheus.MustRegister(PollFailing)
	prometheus.MustRegister(PollVisible)
}

// PollSample is one reading of a poller's state
type PollSample struct {
	RetryCount      int
	LastFetchedAt   time.Time
	NextScheduledAt time.Time
	Failing         bool
	Visible         bool
}

// Collector periodically copies a poller's state into the poll gauges
type Collector struct {
	sample   func() PollSample
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a collector sampling every 15 seconds
func NewCollector(sample func() PollSample) *Collector {
	return &Collector{
		sample:   sample,
		interval: 15 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	s := c.sample()

	PollRetryCount.Set(float64(s.RetryCount))
	PollLastSuccessTimestamp.Set(unixOrZero(s.LastFetchedAt))
	PollNextFetchTimestamp.Set(unixOrZero(s.NextScheduledAt))
	PollFailing.Set(boolGauge(s.Failing))
	PollVisible.Set(boolGauge(s.Visible))
}

func unixOrZero(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / 1e9
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
