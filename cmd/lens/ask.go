package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the forecast copilot",
	Long: `Send one question to the console copilot within the current scope.

When the console is unreachable a local rule-based responder answers, and
when that also fails a generic acknowledgment is returned; ask never errors
out on a degraded console.

Example:
  lens ask "why did demand spike on Friday?"
  lens ask "what are the top drivers?" --sku SKU_422 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	addScopeFlags(askCmd)
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	client.SetFilters(ctx, scopedFilters(cmd))

	reply, err := client.Ask(ctx, args[0])
	if err != nil {
		return fmt.Errorf("ask copilot: %w", err)
	}

	return outputAnswer(cmd, reply)
}
