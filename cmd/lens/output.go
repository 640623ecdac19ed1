package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sorsai/lens"
)

// snapshotPayload is the JSON form of a resource snapshot.
type snapshotPayload[T any] struct {
	Status   lens.Status `json:"status"`
	Fallback bool        `json:"fallback"`
	Epoch    uint64      `json:"epoch"`
	Data     T           `json:"data"`
}

// outputAsJSON writes any value as formatted JSON to the command's stdout.
func outputAsJSON(cmd *cobra.Command, v interface{}) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError prints an error to stderr, ensuring no API keys are leaked.
func outputError(w io.Writer, err error) {
	msg := scrubSensitiveData(err.Error())
	printStyled(w, iconError, errorStyle, "Error: %s", msg)
}

// scrubSensitiveData redacts the configured API key from error messages
// before they reach the terminal.
func scrubSensitiveData(msg string) string {
	if cfgAPIKey != "" && strings.Contains(msg, cfgAPIKey) {
		msg = strings.ReplaceAll(msg, cfgAPIKey, "[REDACTED]")
	}
	return msg
}

// fallbackNotice prints the degraded-data warning above fallback payloads.
func fallbackNotice(cmd *cobra.Command) {
	printWarning(cmd.OutOrStdout(), "Console unavailable, showing fallback data")
}

// outputChart prints a chart snapshot in the configured format.
func outputChart(cmd *cobra.Command, snap lens.Snapshot[[]lens.SeriesPoint]) error {
	if outputJSON {
		return outputAsJSON(cmd, snapshotPayload[[]lens.SeriesPoint]{
			Status: snap.Status, Fallback: snap.IsFallback, Epoch: snap.Epoch, Data: snap.Data,
		})
	}

	out := cmd.OutOrStdout()
	if snap.IsFallback {
		fallbackNotice(cmd)
	}

	fmt.Fprintf(out, "Forecast vs actual (%d points):\n", len(snap.Data))
	for _, p := range snap.Data {
		fmt.Fprintf(out, "  %s  predicted %8.1f  actual %8.1f\n", p.ForecastDate, p.Predicted, p.Actual)
	}
	return nil
}

// outputMetrics prints a metrics snapshot in the configured format.
func outputMetrics(cmd *cobra.Command, snap lens.Snapshot[[]lens.Metric]) error {
	if outputJSON {
		return outputAsJSON(cmd, snapshotPayload[[]lens.Metric]{
			Status: snap.Status, Fallback: snap.IsFallback, Epoch: snap.Epoch, Data: snap.Data,
		})
	}

	out := cmd.OutOrStdout()
	if snap.IsFallback {
		fallbackNotice(cmd)
	}
	if len(snap.Data) == 0 {
		fmt.Fprintln(out, "No metrics available.")
		return nil
	}

	for _, m := range snap.Data {
		trend := ""
		if m.Trend != "" {
			trend = " (" + m.Trend + ")"
		}
		fmt.Fprintf(out, "  %-24s %s%s\n", m.Title, m.Value, trend)
	}
	return nil
}

// outputCards prints a story-cards snapshot in the configured format.
func outputCards(cmd *cobra.Command, snap lens.Snapshot[[]lens.Card]) error {
	if outputJSON {
		return outputAsJSON(cmd, snapshotPayload[[]lens.Card]{
			Status: snap.Status, Fallback: snap.IsFallback, Epoch: snap.Epoch, Data: snap.Data,
		})
	}

	out := cmd.OutOrStdout()
	if snap.IsFallback {
		fallbackNotice(cmd)
	}

	for i, c := range snap.Data {
		fmt.Fprintf(out, "[%s] %s (confidence: %.2f)\n", c.Type, c.Title, c.Confidence)
		if c.Subtitle != "" {
			fmt.Fprintf(out, "    %s\n", c.Subtitle)
		}
		fmt.Fprintf(out, "    %s\n", c.Body)
		if c.PrimaryDriver != "" {
			fmt.Fprintf(out, "    Driver: %s\n", c.PrimaryDriver)
		}
		if i < len(snap.Data)-1 {
			fmt.Fprintln(out)
		}
	}
	return nil
}

// outputExplanation prints an explanation record in the configured format.
func outputExplanation(cmd *cobra.Command, rec lens.ExplanationRecord) error {
	if outputJSON {
		return outputAsJSON(cmd, rec)
	}

	out := cmd.OutOrStdout()
	if rec.ExplanationType == lens.ExplanationError {
		fallbackNotice(cmd)
	}

	fmt.Fprintf(out, "%s @ %s on %s\n", rec.SKUID, rec.StoreID, rec.ForecastDate)
	fmt.Fprintf(out, "  %s\n", renderMarkdown(rec.NarrativeExplanation))
	printField(out, "Top influencer", "%s", rec.TopInfluencer)
	if rec.ConfidenceScore != nil {
		printField(out, "Confidence", "%.2f", *rec.ConfidenceScore)
	}
	printField(out, "Type", "%s", rec.ExplanationType)

	if rec.Structured != nil {
		fmt.Fprintf(out, "  Primary factor: %s (%s)\n",
			rec.Structured.PrimaryFactor.Impact, rec.Structured.PrimaryFactor.Reasoning)
		for _, f := range rec.Structured.SecondaryFactors {
			fmt.Fprintf(out, "    - %s: %s\n", f.Factor, f.Impact)
		}
	}
	return nil
}

// outputAnswer prints an assistant reply in the configured format.
func outputAnswer(cmd *cobra.Command, msg lens.ChatMessage) error {
	if outputJSON {
		return outputAsJSON(cmd, msg)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderMarkdown(msg.Content))

	if msg.Metadata != nil {
		if msg.Metadata.Confidence != nil {
			printMuted(out, "confidence: %.2f", *msg.Metadata.Confidence)
		}
		for _, s := range msg.Metadata.Suggestions {
			printInfo(out, "%s: %s", s.Label, s.Action.Type)
		}
	}
	return nil
}

// outputHealth prints a health status in the configured format.
func outputHealth(cmd *cobra.Command, status lens.HealthStatus) error {
	if outputJSON {
		return outputAsJSON(cmd, status)
	}

	out := cmd.OutOrStdout()
	if status.Healthy {
		printSuccess(out, "Console reachable")
	} else {
		printWarning(out, "Console unreachable: %s", status.Error)
	}
	for _, name := range status.DegradedResources {
		printMuted(out, "degraded: %s", name)
	}
	return nil
}
