package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sorsai/lens"
)

var explainCmd = &cobra.Command{
	Use:   "explain <sku> <store> <date>",
	Short: "Explain one forecast point",
	Long: `Fetch the explanation for a single forecast point.

Example:
  lens explain SKU_422 STORE_5 2025-07-11
  lens explain SKU_422 STORE_5 2025-07-11 --json`,
	Args: cobra.ExactArgs(3),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ec := lens.ExplainContext{
		SKUID:        args[0],
		StoreID:      args[1],
		ForecastDate: args[2],
	}

	rec, err := client.Explain(context.Background(), ec)
	if err != nil {
		return fmt.Errorf("explain forecast: %w", err)
	}

	return outputExplanation(cmd, rec)
}
