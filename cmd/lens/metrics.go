package main

import (
	"context"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the aggregate KPI tiles",
	Long: `Fetch the aggregate metric tiles for the current scope.

Example:
  lens metrics
  lens metrics --start 2025-07-01 --end 2025-07-13 --json`,
	Args: cobra.NoArgs,
	RunE: runMetrics,
}

func init() {
	addScopeFlags(metricsCmd)
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	client.SetFilters(ctx, scopedFilters(cmd))

	return outputMetrics(cmd, client.Metrics())
}
