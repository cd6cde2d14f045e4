package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/opsboard/pkg/config"
	"github.com/cuemby/opsboard/pkg/log"
	"github.com/cuemby/opsboard/pkg/metrics"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// cfg is loaded before any subcommand runs
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "opsboard",
	Short: "Opsboard - live status for a personal ops dashboard",
	Long: `Opsboard aggregates the local health probe, the automation gateway
and the day's work log into one status snapshot, serves it over HTTP
and keeps clients in sync on an adaptive polling cadence.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Opsboard version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit JSON log lines")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(automationsCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		loaded.Log.Level = level
	}
	if cmd.Flags().Changed("json-logs") {
		loaded.Log.JSON, _ = cmd.Flags().GetBool("json-logs")
	}

	log.Init(log.Config{
		Level:      log.ParseLevel(loaded.Log.Level),
		JSONOutput: loaded.Log.JSON,
		Output:     os.Stderr,
	})
	metrics.SetVersion(Version)

	cfg = loaded
	return nil
}
