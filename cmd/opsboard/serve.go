package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/opsboard/pkg/api"
	"github.com/cuemby/opsboard/pkg/clock"
	"github.com/cuemby/opsboard/pkg/cron"
	"github.com/cuemby/opsboard/pkg/health"
	"github.com/cuemby/opsboard/pkg/log"
	"github.com/cuemby/opsboard/pkg/worklog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the status endpoint",
	Long: `Serve GET /api/status together with /health, /ready, /live and
/metrics.

Every status request runs the health probe and queries the automation
gateway, so the endpoint can be throttled with server.rate_per_second.

Examples:
  # Serve on the default address
  opsboard serve

  # Serve on all interfaces
  opsboard serve --listen 0.0.0.0:3000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address (overrides server.listen)")
}

func newAggregator() *api.Aggregator {
	probe := health.NewProbe(cfg.Probe.Command).
		WithTimeout(cfg.Probe.Timeout).
		WithDir(cfg.Probe.Dir)
	gateway := cron.NewGateway(cfg.Gateway.URL, cfg.Gateway.TokenFile).
		WithTimeout(cfg.Gateway.Timeout)

	return api.NewAggregator(
		health.NewSource(probe, nil),
		gateway,
		worklog.Default(),
		clock.Real(),
	)
}

func runServe(cmd *cobra.Command, args []string) error {
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	srv := api.NewServer(cfg.Server, newAggregator())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Shutting down status server")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("status server error: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown status server: %w", err)
	}
	return nil
}
