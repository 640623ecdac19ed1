package lens

import (
	"encoding/json"
	"fmt"
)

// Boundary validation. Every console payload passes through exactly one
// function in this file before the rest of the core sees it: the outcome is
// either a normalized typed value or ErrMalformedPayload/ErrEmptyPayload.
// Downstream logic never probes optional fields ad hoc.

// chartPayload is the raw chart endpoint body.
type chartPayload struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// decodeChart validates and normalizes a chart body into series points for
// the given scope. The endpoint returns one value series; Predicted and
// Actual both carry values[i].
func decodeChart(body []byte, sku, store string) ([]SeriesPoint, error) {
	var raw chartPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: chart: %v", ErrMalformedPayload, err)
	}
	if raw.Labels == nil || raw.Values == nil {
		return nil, fmt.Errorf("%w: chart: labels and values are required", ErrMalformedPayload)
	}
	if len(raw.Labels) != len(raw.Values) {
		return nil, fmt.Errorf("%w: chart: %d labels vs %d values", ErrMalformedPayload, len(raw.Labels), len(raw.Values))
	}
	if len(raw.Labels) == 0 {
		return nil, ErrEmptyPayload
	}

	points := make([]SeriesPoint, len(raw.Labels))
	for i, date := range raw.Labels {
		points[i] = SeriesPoint{
			SKUID:        sku,
			StoreID:      store,
			ForecastDate: date,
			Predicted:    raw.Values[i],
			Actual:       raw.Values[i],
		}
	}
	return points, nil
}

// decodeMetrics validates a metrics body.
func decodeMetrics(body []byte) ([]Metric, error) {
	var metrics []Metric
	if err := json.Unmarshal(body, &metrics); err != nil {
		return nil, fmt.Errorf("%w: metrics: %v", ErrMalformedPayload, err)
	}
	if len(metrics) == 0 {
		return nil, ErrEmptyPayload
	}
	for i, m := range metrics {
		if m.Key == "" || m.Title == "" {
			return nil, fmt.Errorf("%w: metrics[%d]: key and title are required", ErrMalformedPayload, i)
		}
	}
	return metrics, nil
}

// decodeCards validates a storycards body. Card types outside the known set
// are preserved as-is; the view layer treats them like insights.
func decodeCards(body []byte) ([]Card, error) {
	var cards []Card
	if err := json.Unmarshal(body, &cards); err != nil {
		return nil, fmt.Errorf("%w: storycards: %v", ErrMalformedPayload, err)
	}
	if len(cards) == 0 {
		return nil, ErrEmptyPayload
	}
	for i, c := range cards {
		if c.Title == "" {
			return nil, fmt.Errorf("%w: storycards[%d]: title is required", ErrMalformedPayload, i)
		}
	}
	return cards, nil
}

// decodeExplanation validates an explanation body against its request
// context: missing identifiers are backfilled from the context, a missing
// influencer becomes "unknown", and confidence is clamped to [0, 1].
func decodeExplanation(body []byte, ctx ExplainContext) (ExplanationRecord, error) {
	var rec ExplanationRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return ExplanationRecord{}, fmt.Errorf("%w: explanation: %v", ErrMalformedPayload, err)
	}
	if rec.NarrativeExplanation == "" {
		return ExplanationRecord{}, fmt.Errorf("%w: explanation: narrative_explanation is required", ErrMalformedPayload)
	}

	if rec.SKUID == "" {
		rec.SKUID = ctx.SKUID
	}
	if rec.StoreID == "" {
		rec.StoreID = ctx.StoreID
	}
	if rec.ForecastDate == "" {
		rec.ForecastDate = ctx.ForecastDate
	}
	if rec.TopInfluencer == "" {
		rec.TopInfluencer = InfluencerUnknown
	}
	if rec.ExplanationType == "" {
		rec.ExplanationType = ExplanationModel
	}
	if rec.ConfidenceScore != nil {
		rec.ConfidenceScore = float64ptr(clampConfidence(*rec.ConfidenceScore))
	}
	return rec, nil
}

// decodeExplanationBatch validates a batch explanation body.
func decodeExplanationBatch(body []byte) ([]ExplanationRecord, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: explanations: %v", ErrMalformedPayload, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}

	records := make([]ExplanationRecord, 0, len(raw))
	for _, item := range raw {
		rec, err := decodeExplanation(item, ExplainContext{})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// copilotPayload is the raw copilot endpoint body. Older console builds
// answer under "explanation" instead of "answer"; both are accepted.
type copilotPayload struct {
	Answer      string     `json:"answer"`
	Explanation string     `json:"explanation"`
	Highlight   *Highlight `json:"chart_highlight"`
	Action      *Action    `json:"action"`
	Confidence  *float64   `json:"confidence"`
	Sources     []string   `json:"sources"`
}

// decodeAnswer validates a copilot body.
func decodeAnswer(body []byte) (Answer, error) {
	var raw copilotPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return Answer{}, fmt.Errorf("%w: copilot: %v", ErrMalformedPayload, err)
	}

	text := raw.Answer
	if text == "" {
		text = raw.Explanation
	}
	if text == "" {
		return Answer{}, fmt.Errorf("%w: copilot: answer is required", ErrMalformedPayload)
	}

	ans := Answer{
		Text:      text,
		Highlight: raw.Highlight,
		Action:    raw.Action,
		Sources:   raw.Sources,
	}
	if raw.Confidence != nil {
		ans.Confidence = float64ptr(clampConfidence(*raw.Confidence))
	}
	return ans, nil
}

// decodeConfidenceHistory validates a confidence-history body.
func decodeConfidenceHistory(body []byte) (ConfidenceHistory, error) {
	var hist ConfidenceHistory
	if err := json.Unmarshal(body, &hist); err != nil {
		return ConfidenceHistory{}, fmt.Errorf("%w: confidence history: %v", ErrMalformedPayload, err)
	}
	if len(hist.History) == 0 {
		return ConfidenceHistory{}, ErrEmptyPayload
	}
	for i := range hist.History {
		hist.History[i].Confidence = clampConfidence(hist.History[i].Confidence)
	}
	return hist, nil
}

func clampConfidence(v float64) float64 {
	if v < ConfidenceMin {
		return ConfidenceMin
	}
	if v > ConfidenceMax {
		return ConfidenceMax
	}
	return v
}
