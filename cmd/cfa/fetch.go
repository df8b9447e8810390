package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nulzo/zone-analytics-proxy/internal/analytics"
	"github.com/nulzo/zone-analytics-proxy/internal/cli"
	"github.com/nulzo/zone-analytics-proxy/internal/config"
	"github.com/nulzo/zone-analytics-proxy/pkg/api"
	"github.com/spf13/cobra"
)

type fetchOptions struct {
	email    string
	apiKey   string
	zoneID   string
	endpoint string
	timeout  time.Duration
	asJSON   bool
}

func newFetchCmd() *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch [days]",
		Short: "Fetch unique visits for the past N days (default 7)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var days string
			if len(args) == 1 {
				days = args[0]
			}
			return runFetch(cmd, opts, days)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.email, "email", os.Getenv("CF_EMAIL"), "account email (env CF_EMAIL)")
	flags.StringVar(&opts.apiKey, "api-key", os.Getenv("CF_API_KEY"), "global API key (env CF_API_KEY)")
	flags.StringVar(&opts.zoneID, "zone", os.Getenv("CF_ZONE_ID"), "zone identifier (env CF_ZONE_ID)")
	flags.StringVar(&opts.endpoint, "endpoint", config.DefaultEndpoint, "GraphQL endpoint")
	flags.DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")
	flags.BoolVar(&opts.asJSON, "json", false, "print the result as JSON")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *fetchOptions, days string) error {
	out := cmd.OutOrStdout()
	now := time.Now()
	window := analytics.NewWindow(now, analytics.NormalizeDays(days, 0))

	fetcher := analytics.NewFetcher(opts.endpoint, opts.timeout,
		analytics.WithClock(func() time.Time { return now }),
	)

	if !opts.asJSON {
		fmt.Fprintf(out, "\nFetching Cloudflare analytics for the past %d days...\n\n", window.Days())
	}

	result, err := fetcher.Fetch(cmd.Context(), analytics.Request{
		Email:  opts.email,
		APIKey: opts.apiKey,
		ZoneID: opts.zoneID,
		Days:   days,
	})
	if err != nil {
		return err
	}

	if opts.asJSON {
		return writeJSON(out, result)
	}

	renderBreakdown(out, window, result)
	return nil
}

// writeJSON prints result as indented JSON, highlighted only when w is a terminal.
func writeJSON(w io.Writer, result *api.AnalyticsResult) error {
	if isTerminal(w) {
		_, err := fmt.Fprintln(w, cli.PrettyFormat(result))
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func renderBreakdown(w io.Writer, window analytics.Window, result *api.AnalyticsResult) {
	fmt.Fprintf(w, "Total Unique Visits from %s to %s: %s\n\n",
		window.StartDate(), window.EndDate(), cli.Bold(fmt.Sprint(result.TotalUniqueVisits)))

	fmt.Fprintln(w, "Daily Breakdown:")
	fmt.Fprintln(w, "------------------------------")
	for _, entry := range result.DailyBreakdown {
		fmt.Fprintf(w, "%s %s (%s): %d unique visits\n", cli.Arrow(), entry.Day, entry.Date, entry.UniqueVisits)
	}

	fmt.Fprintf(w, "\n%s Fetching completed successfully.\n\n", cli.CheckMark())
}
