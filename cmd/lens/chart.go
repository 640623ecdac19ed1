package main

import (
	"context"

	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show the demand forecast chart",
	Long: `Fetch the demand-vs-prediction series for the current scope.

Example:
  lens chart
  lens chart --start 2025-07-01 --end 2025-07-13 --sku SKU_422
  lens chart --sku SKU_422 --store STORE_5 --json`,
	Args: cobra.NoArgs,
	RunE: runChart,
}

func init() {
	addScopeFlags(chartCmd)
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	client.SetFilters(ctx, scopedFilters(cmd))

	return outputChart(cmd, client.Chart())
}
