package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sorsai/lens"
)

var (
	cfgAPIURL   string
	cfgAPIKey   string
	cfgSourceID string
	cfgTimeout  time.Duration
	cfgDebug    bool
	outputJSON  bool

	// Filter scope flags shared by the dashboard commands.
	flagStart string
	flagEnd   string
	flagSKU   string
	flagStore string
)

var rootCmd = &cobra.Command{
	Use:   "lens",
	Short: "Lens - SorsAI demand forecast console CLI",
	Long: `Lens is a CLI for the SorsAI demand forecast console.

It reads the dashboard surfaces (chart, metrics, story cards), fetches
forecast explanations, and talks to the console copilot. When the console
is unreachable every surface degrades to a documented fixed fallback.`,
}

func init() {
	// A local .env is convenient during development; absence is not an error.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&cfgAPIURL, "api-url", "", "Base URL of the SorsAI console (default: $SORS_API_URL)")
	rootCmd.PersistentFlags().StringVar(&cfgAPIKey, "api-key", "", "API key for console authentication (default: $SORS_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&cfgSourceID, "source-id", "", "Client identifier used in diagnostics")
	rootCmd.PersistentFlags().DurationVar(&cfgTimeout, "timeout", 0, "Request timeout (default: 30s)")
	rootCmd.PersistentFlags().BoolVar(&cfgDebug, "debug", false, "Log all console communication to stderr")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")
}

// addScopeFlags registers the filter scope flags on a dashboard command.
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagStart, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagEnd, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagSKU, "sku", "", "SKU scope")
	cmd.Flags().StringVar(&flagStore, "store", "", "Store scope")
}

// scopedFilters builds the filter state for one command invocation: the fixed
// defaults overridden by whatever scope flags were set.
func scopedFilters(cmd *cobra.Command) lens.FilterState {
	f := lens.DefaultFilters()
	if cmd.Flags().Changed("start") {
		f.StartDate = flagStart
	}
	if cmd.Flags().Changed("end") {
		f.EndDate = flagEnd
	}
	if cmd.Flags().Changed("sku") {
		f.SKU = flagSKU
	}
	if cmd.Flags().Changed("store") {
		f.Store = flagStore
	}
	return f
}

// loadConfig layers flags over environment variables over defaults.
func loadConfig() lens.Config {
	cfg := lens.ConfigFromEnv()

	if cfgAPIURL != "" {
		cfg.ConsoleURL = cfgAPIURL
	}
	if cfgAPIKey != "" {
		cfg.APIKey = cfgAPIKey
	}
	if cfgSourceID != "" {
		cfg.SourceID = cfgSourceID
	}
	if cfgTimeout != 0 {
		cfg.RequestTimeout = cfgTimeout
	}
	if cfgDebug {
		cfg.Debug = true
	}

	// Degraded sessions keep a working assistant.
	cfg.Responder = lens.RuleResponder{}

	return cfg
}

// newClient builds a client from the resolved configuration.
func newClient() (*lens.Client, error) {
	client, err := lens.New(loadConfig(), lens.ActionHandlers{})
	if err != nil {
		return nil, fmt.Errorf("initialize client: %w", err)
	}
	return client, nil
}
