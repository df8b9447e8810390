package main

import (
	"fmt"
	"os"

	"github.com/nulzo/zone-analytics-proxy/internal/cli"
	"github.com/nulzo/zone-analytics-proxy/internal/version"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cfa",
		Short:         "Query daily unique visits for a Cloudflare zone",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the cfa version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Current())
		},
	}

	rootCmd.AddCommand(newFetchCmd(), versionCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s Error fetching Cloudflare analytics: %v\n", cli.CrossMark(), err)
		os.Exit(1)
	}
}
