package lens

import (
	"errors"
	"testing"
)

func TestDecodeChart_RoundTrip(t *testing.T) {
	body := []byte(`{"labels":["2025-07-01","2025-07-02"],"values":[10,20]}`)

	points, err := decodeChart(body, "SKU_1", "STORE_1")
	if err != nil {
		t.Fatalf("decodeChart returned error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("decodeChart returned %d points, want 2", len(points))
	}

	for i, want := range []SeriesPoint{
		{SKUID: "SKU_1", StoreID: "STORE_1", ForecastDate: "2025-07-01", Predicted: 10, Actual: 10},
		{SKUID: "SKU_1", StoreID: "STORE_1", ForecastDate: "2025-07-02", Predicted: 20, Actual: 20},
	} {
		if points[i] != want {
			t.Errorf("points[%d] = %+v, want %+v", i, points[i], want)
		}
	}
}

func TestDecodeChart_MismatchedLengths(t *testing.T) {
	body := []byte(`{"labels":["2025-07-01"],"values":[10,20]}`)

	_, err := decodeChart(body, "", "")
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("decodeChart error = %v, want ErrMalformedPayload", err)
	}
}

func TestDecodeChart_MissingFields(t *testing.T) {
	_, err := decodeChart([]byte(`{"series":[1,2,3]}`), "", "")
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("decodeChart error = %v, want ErrMalformedPayload", err)
	}
}

func TestDecodeChart_EmptySeries(t *testing.T) {
	_, err := decodeChart([]byte(`{"labels":[],"values":[]}`), "", "")
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("decodeChart error = %v, want ErrEmptyPayload", err)
	}
}

func TestDecodeChart_NotJSON(t *testing.T) {
	_, err := decodeChart([]byte(`<html>boom</html>`), "", "")
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("decodeChart error = %v, want ErrMalformedPayload", err)
	}
}

func TestDecodeMetrics_Valid(t *testing.T) {
	body := []byte(`[{"key":"accuracy","title":"Forecast Accuracy","value":"92%","color":"green","trend":"+3%"}]`)

	metrics, err := decodeMetrics(body)
	if err != nil {
		t.Fatalf("decodeMetrics returned error: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("decodeMetrics returned %d metrics, want 1", len(metrics))
	}
	if metrics[0].Key != "accuracy" || metrics[0].Trend != "+3%" {
		t.Errorf("unexpected metric: %+v", metrics[0])
	}
}

func TestDecodeMetrics_MissingKey(t *testing.T) {
	_, err := decodeMetrics([]byte(`[{"title":"Accuracy","value":"92%"}]`))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("decodeMetrics error = %v, want ErrMalformedPayload", err)
	}
}

func TestDecodeMetrics_Empty(t *testing.T) {
	_, err := decodeMetrics([]byte(`[]`))
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("decodeMetrics error = %v, want ErrEmptyPayload", err)
	}
}

func TestDecodeCards_Valid(t *testing.T) {
	body := []byte(`[
		{"type":"anomaly","title":"Anomaly detected","subtitle":"STORE_5 2025-07-13","body":"Unexpected spike in sales detected.","confidence":0.95,"primary_driver":"anomaly",
		 "action":{"type":"show_forecast_detail","params":{"sku_id":"SKU_422","store_id":"STORE_5","forecast_date":"2025-07-13"}}}
	]`)

	cards, err := decodeCards(body)
	if err != nil {
		t.Fatalf("decodeCards returned error: %v", err)
	}
	if cards[0].Type != CardAnomaly {
		t.Errorf("card type = %q, want %q", cards[0].Type, CardAnomaly)
	}
	if cards[0].Action == nil || cards[0].Action.Type != ActionShowForecastDetail {
		t.Errorf("card action not decoded: %+v", cards[0].Action)
	}
}

func TestDecodeCards_EmptyArray(t *testing.T) {
	_, err := decodeCards([]byte(`[]`))
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("decodeCards error = %v, want ErrEmptyPayload", err)
	}
}

func TestDecodeExplanation_BackfillsContext(t *testing.T) {
	ctx := ExplainContext{SKUID: "SKU_1", StoreID: "STORE_1", ForecastDate: "2025-07-11"}
	body := []byte(`{"narrative_explanation":"Demand rose with clear weather."}`)

	rec, err := decodeExplanation(body, ctx)
	if err != nil {
		t.Fatalf("decodeExplanation returned error: %v", err)
	}
	if rec.SKUID != "SKU_1" || rec.StoreID != "STORE_1" || rec.ForecastDate != "2025-07-11" {
		t.Errorf("context not backfilled: %+v", rec)
	}
	if rec.TopInfluencer != InfluencerUnknown {
		t.Errorf("TopInfluencer = %q, want %q", rec.TopInfluencer, InfluencerUnknown)
	}
	if rec.ExplanationType != ExplanationModel {
		t.Errorf("ExplanationType = %q, want %q", rec.ExplanationType, ExplanationModel)
	}
}

func TestDecodeExplanation_ClampsConfidence(t *testing.T) {
	ctx := ExplainContext{SKUID: "s", StoreID: "st", ForecastDate: "2025-07-11"}
	body := []byte(`{"narrative_explanation":"x","confidence_score":1.7}`)

	rec, err := decodeExplanation(body, ctx)
	if err != nil {
		t.Fatalf("decodeExplanation returned error: %v", err)
	}
	if rec.ConfidenceScore == nil || *rec.ConfidenceScore != ConfidenceMax {
		t.Errorf("ConfidenceScore = %v, want %v", rec.ConfidenceScore, ConfidenceMax)
	}
}

func TestDecodeExplanation_MissingNarrative(t *testing.T) {
	_, err := decodeExplanation([]byte(`{"top_influencer":"weather"}`), ExplainContext{})
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("decodeExplanation error = %v, want ErrMalformedPayload", err)
	}
}

func TestDecodeAnswer_AcceptsExplanationField(t *testing.T) {
	ans, err := decodeAnswer([]byte(`{"explanation":"Promotions drove the uplift."}`))
	if err != nil {
		t.Fatalf("decodeAnswer returned error: %v", err)
	}
	if ans.Text != "Promotions drove the uplift." {
		t.Errorf("Text = %q", ans.Text)
	}
}

func TestDecodeAnswer_WithHighlightAndAction(t *testing.T) {
	body := []byte(`{
		"answer":"Sales dropped due to severe rain impacting foot traffic.",
		"chart_highlight":{"date":"2025-07-11","sku":"SKU_422","store":"STORE_5"},
		"action":{"type":"show_forecast_detail","params":{"sku":"SKU_422","store":"STORE_5","forecast_date":"2025-07-11"}}
	}`)

	ans, err := decodeAnswer(body)
	if err != nil {
		t.Fatalf("decodeAnswer returned error: %v", err)
	}
	if ans.Highlight == nil || ans.Highlight.Date != "2025-07-11" {
		t.Errorf("Highlight not decoded: %+v", ans.Highlight)
	}
	if ans.Action == nil || ans.Action.Type != ActionShowForecastDetail {
		t.Errorf("Action not decoded: %+v", ans.Action)
	}
}

func TestDecodeAnswer_MissingText(t *testing.T) {
	_, err := decodeAnswer([]byte(`{"chart_highlight":null}`))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("decodeAnswer error = %v, want ErrMalformedPayload", err)
	}
}

func TestDecodeConfidenceHistory_ClampsValues(t *testing.T) {
	body := []byte(`{"sku_id":"SKU_1","store_id":"STORE_1","history":[{"date":"2025-07-10","confidence":-0.2},{"date":"2025-07-11","confidence":0.85}]}`)

	hist, err := decodeConfidenceHistory(body)
	if err != nil {
		t.Fatalf("decodeConfidenceHistory returned error: %v", err)
	}
	if hist.History[0].Confidence != 0 {
		t.Errorf("History[0].Confidence = %v, want 0", hist.History[0].Confidence)
	}
	if hist.History[1].Confidence != 0.85 {
		t.Errorf("History[1].Confidence = %v, want 0.85", hist.History[1].Confidence)
	}
}
