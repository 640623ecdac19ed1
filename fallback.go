package lens

// Fixed fallback payloads. Every remote read degrades to one of these when
// the console is unreachable, returns a non-success status, or produces a
// malformed or empty body. The payloads are constants rather than generated
// per failure so callers and tests can assert exact fallback content.

// FallbackChartSeries returns the fixed 7-point demo series rendered when the
// chart resource is degraded.
func FallbackChartSeries() []SeriesPoint {
	return []SeriesPoint{
		{ForecastDate: "2025-07-01", Predicted: 4000, Actual: 2400},
		{ForecastDate: "2025-07-02", Predicted: 3000, Actual: 1398},
		{ForecastDate: "2025-07-03", Predicted: 2000, Actual: 9800},
		{ForecastDate: "2025-07-04", Predicted: 2780, Actual: 3908},
		{ForecastDate: "2025-07-05", Predicted: 1890, Actual: 4800},
		{ForecastDate: "2025-07-06", Predicted: 2390, Actual: 3800},
		{ForecastDate: "2025-07-07", Predicted: 3490, Actual: 4300},
	}
}

// FallbackMetrics returns the degraded metrics payload: an empty state, no
// tiles are shown.
func FallbackMetrics() []Metric {
	return []Metric{}
}

// FallbackCardBody is the body of the single synthetic story card.
const FallbackCardBody = "No anomalies or spikes detected this week. Forecasts remain stable."

// FallbackCards returns exactly one synthetic story card. An empty cards
// response degrades to this too, never to zero cards.
func FallbackCards() []Card {
	return []Card{
		{
			Type:          CardFallback,
			Title:         "Stable forecasts",
			Subtitle:      "No narrative events for the current scope",
			Body:          FallbackCardBody,
			Confidence:    0.8,
			PrimaryDriver: InfluencerHistoricalPattern,
		},
	}
}

// FallbackExplanationNarrative is the narrative of the synthetic error record.
const FallbackExplanationNarrative = "Failed to load explanation. Please try again."

// FallbackExplanation returns the synthetic record stored when an explanation
// request fails. Retries after this are explicit user actions via Invalidate,
// never automatic.
func FallbackExplanation(ctx ExplainContext) ExplanationRecord {
	return ExplanationRecord{
		SKUID:                ctx.SKUID,
		StoreID:              ctx.StoreID,
		ForecastDate:         ctx.ForecastDate,
		NarrativeExplanation: FallbackExplanationNarrative,
		TopInfluencer:        InfluencerUnknown,
		ConfidenceScore:      float64ptr(0),
		ExplanationType:      ExplanationError,
	}
}

// GenericAssistantReply is the third and final tier of the assistant fallback
// chain: appended verbatim when both the console and the local responder fail.
const GenericAssistantReply = "I understand your question. Let me analyze the forecast data and provide you with insights based on current trends and patterns."
