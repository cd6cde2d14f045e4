package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/opsboard/pkg/cron"
	"github.com/cuemby/opsboard/pkg/health"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run the health probe once and print the parsed records",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		probe := health.NewProbe(cfg.Probe.Command).
			WithTimeout(cfg.Probe.Timeout).
			WithDir(cfg.Probe.Dir)
		report := health.NewSource(probe, nil).Records(context.Background())

		if asJSON {
			return printJSON(report.Records)
		}

		fmt.Printf("Source: %s", report.Tier)
		if report.Reason != "" {
			fmt.Printf(" (%s)", report.Reason)
		}
		fmt.Printf(" in %s\n\n", report.Duration.Round(time.Millisecond))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SERVICE\tLEVEL")
		for _, rec := range report.Records {
			fmt.Fprintf(w, "%s\t%s\n", rec.ServiceName, rec.Level)
		}
		return w.Flush()
	},
}

var automationsCmd = &cobra.Command{
	Use:   "automations",
	Short: "List the automations reported by the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		gateway := cron.NewGateway(cfg.Gateway.URL, cfg.Gateway.TokenFile).
			WithTimeout(cfg.Gateway.Timeout)
		report := gateway.List(context.Background())

		if asJSON {
			return printJSON(report.Automations)
		}

		fmt.Printf("Source: %s", report.Source)
		if report.Err != nil {
			fmt.Printf(" (%v)", report.Err)
		}
		fmt.Print("\n\n")

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tNEXT RUN")
		for _, a := range report.Automations {
			fmt.Fprintf(w, "%s\t%s\n", a.Name, a.NextRunLabel)
		}
		return w.Flush()
	},
}

func init() {
	probeCmd.Flags().Bool("json", false, "Print records as JSON")
	automationsCmd.Flags().Bool("json", false, "Print automations as JSON")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
