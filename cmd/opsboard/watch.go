package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/opsboard/pkg/client"
	"github.com/cuemby/opsboard/pkg/events"
	"github.com/cuemby/opsboard/pkg/log"
	"github.com/cuemby/opsboard/pkg/metrics"
	"github.com/cuemby/opsboard/pkg/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll a status server and log every state change",
	Long: `Poll an opsboard server on the adaptive cadence and log each
polling event. Useful for checking the cadence and backoff against a real
server.

Signals:
  SIGHUP   retry now (resets the failure count)
  SIGUSR1  pause polling, as if the view were hidden
  SIGUSR2  resume polling with an immediate fetch

Examples:
  # Watch the local server
  opsboard watch

  # Watch another host
  opsboard watch --url http://dash.local:3000`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("url", "", "Server base URL (overrides poll.url)")
	watchCmd.Flags().String("metrics-listen", "", "Expose poller metrics on this address (disabled when empty)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	url := cfg.Poll.URL
	if flagURL, _ := cmd.Flags().GetString("url"); flagURL != "" {
		url = flagURL
	}

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	poller := scheduler.New(
		scheduler.PolicyFromConfig(cfg.Poll),
		client.NewClient(url),
		scheduler.WithBroker(broker),
	)

	logger := log.WithComponent("watch")
	logger.Info().Str("url", url).Msg("Watching status server")
	poller.Start()

	if addr, _ := cmd.Flags().GetString("metrics-listen"); addr != "" {
		stop := serveMetrics(addr, poller)
		defer stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGUSR2)

	for {
		select {
		case event := <-sub:
			logEvent(event, poller.State())
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				poller.Retry()
			case syscall.SIGUSR1:
				poller.SetVisible(false)
			case syscall.SIGUSR2:
				poller.SetVisible(true)
			default:
				poller.Stop()
				fmt.Println("Stopped.")
				return nil
			}
		}
	}
}

func logEvent(event *events.Event, state scheduler.PollState) {
	logger := log.WithComponent("watch")
	entry := logger.Info()
	if event.Type == events.EventPollFailed {
		entry = logger.Warn()
	}

	entry = entry.Str("event", string(event.Type))
	for k, v := range event.Metadata {
		entry = entry.Str(k, v)
	}
	if snapshot := state.LastSnapshot; snapshot != nil && event.Type == events.EventPollSucceeded {
		entry = entry.
			Time("generated_at", snapshot.GeneratedAt).
			Str("worst_level", snapshot.WorstLevel().String()).
			Int("automations", len(snapshot.Automations))
	}
	entry.Msg(event.Message)
}

// serveMetrics samples the poller into the poll gauges and exposes them
func serveMetrics(addr string, poller *scheduler.Poller) func() {
	collector := metrics.NewCollector(func() metrics.PollSample {
		state := poller.State()
		return metrics.PollSample{
			RetryCount:      state.RetryCount,
			LastFetchedAt:   state.LastFetchedAt,
			NextScheduledAt: state.NextScheduledAt,
			Failing:         state.LastError != "",
			Visible:         state.Visible,
		}
	})
	collector.Start()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger := log.WithComponent("watch")
			logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	return func() {
		collector.Stop()
		_ = srv.Close()
	}
}
