package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sorsai/lens"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Show narrative story cards",
	Long: `Fetch the narrative story cards for the current scope.

Signal toggles control which event feeds the narrative engine considers.

Example:
  lens cards
  lens cards --signals weather,promotions,anomalies
  lens cards --sku SKU_422 --json`,
	Args: cobra.NoArgs,
	RunE: runCards,
}

var cardsSignals []string

func init() {
	addScopeFlags(cardsCmd)
	cardsCmd.Flags().StringSliceVar(&cardsSignals, "signals", nil, "Comma-separated signal toggles (weather, promotions, socialTrends, anomalies, highUncertainty, biggestSwings, aiOverrides)")
	rootCmd.AddCommand(cardsCmd)
}

func runCards(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	f := scopedFilters(cmd)
	if cmd.Flags().Changed("signals") {
		applySignals(&f, cardsSignals)
	}

	ctx := context.Background()
	client.SetFilters(ctx, f)

	return outputCards(cmd, client.StoryCards())
}

// applySignals resets the toggles and enables only the named ones. Unknown
// names are ignored.
func applySignals(f *lens.FilterState, signals []string) {
	f.Weather = false
	f.Promotions = false
	f.SocialTrends = false
	f.Anomalies = false
	f.HighUncertainty = false
	f.BiggestSwings = false
	f.AIOverrides = false

	for _, sig := range signals {
		switch sig {
		case "weather":
			f.Weather = true
		case "promotions":
			f.Promotions = true
		case "socialTrends":
			f.SocialTrends = true
		case "anomalies":
			f.Anomalies = true
		case "highUncertainty":
			f.HighUncertainty = true
		case "biggestSwings":
			f.BiggestSwings = true
		case "aiOverrides":
			f.AIOverrides = true
		}
	}
}
