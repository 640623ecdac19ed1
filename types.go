package lens

import "time"

// FilterState is the single query descriptor shared by every dashboard
// resource. It is a plain value: callers never mutate one in place, they
// build a new value and hand it to FilterStore.Replace.
type FilterState struct {
	StartDate string `json:"startDate"` // ISO calendar date, empty means unscoped
	EndDate   string `json:"endDate"`
	SKU       string `json:"sku"`
	Store     string `json:"store"`

	Weather         bool `json:"weather"`
	Promotions      bool `json:"promotions"`
	SocialTrends    bool `json:"socialTrends"`
	Anomalies       bool `json:"anomalies"`
	HighUncertainty bool `json:"highUncertainty"`
	BiggestSwings   bool `json:"biggestSwings"`
	AIOverrides     bool `json:"aiOverrides"`
}

// Signals returns the names of the enabled signal toggles, in the order the
// storycards endpoint expects them as repeated query parameters.
func (f FilterState) Signals() []string {
	var signals []string
	for _, s := range []struct {
		name string
		on   bool
	}{
		{"weather", f.Weather},
		{"promotions", f.Promotions},
		{"socialTrends", f.SocialTrends},
		{"anomalies", f.Anomalies},
		{"highUncertainty", f.HighUncertainty},
		{"biggestSwings", f.BiggestSwings},
		{"aiOverrides", f.AIOverrides},
	} {
		if s.on {
			signals = append(signals, s.name)
		}
	}
	return signals
}

// SeriesPoint is one normalized point of the demand-vs-prediction chart.
// The chart endpoint returns a single value series, so Predicted and Actual
// carry the same number for live data; fallback data keeps them distinct.
type SeriesPoint struct {
	SKUID        string  `json:"sku_id,omitempty"`
	StoreID      string  `json:"store_id,omitempty"`
	ForecastDate string  `json:"forecast_date"`
	Predicted    float64 `json:"predicted"`
	Actual       float64 `json:"actual"`
}

// Metric is one aggregate KPI tile.
type Metric struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value string `json:"value"`
	Color string `json:"color"`
	Trend string `json:"trend"`
}

// CardType classifies a story card.
type CardType string

const (
	CardAnomaly  CardType = "anomaly"
	CardInsight  CardType = "insight"
	CardDriver   CardType = "driver"
	CardFallback CardType = "fallback"
)

// Card is a short narrative unit describing an anomaly, insight or driver for
// the current filter scope. Cards are ephemeral: they are regenerated on every
// filter change and never cached.
type Card struct {
	Type          CardType `json:"type"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Body          string   `json:"body"`
	Confidence    float64  `json:"confidence"`
	PrimaryDriver string   `json:"primary_driver"`
	Action        *Action  `json:"action,omitempty"`
}

// ExplainContext identifies one explainable forecast point. It is the cache
// key for ExplanationCache.
type ExplainContext struct {
	SKUID        string `json:"sku_id"`
	StoreID      string `json:"store_id"`
	ForecastDate string `json:"forecast_date"`
}

// ExplanationType tags how an ExplanationRecord was produced.
type ExplanationType string

const (
	ExplanationModel     ExplanationType = "model"
	ExplanationRuleBased ExplanationType = "rule_based"
	ExplanationFallback  ExplanationType = "fallback"
	ExplanationError     ExplanationType = "error"
)

// ExplanationRecord is the AI-generated explanation for a single forecast
// point. Records are immutable once received and cached per context key.
type ExplanationRecord struct {
	SKUID                string                 `json:"sku_id"`
	StoreID              string                 `json:"store_id"`
	ForecastDate         string                 `json:"forecast_date"`
	NarrativeExplanation string                 `json:"narrative_explanation"`
	TopInfluencer        string                 `json:"top_influencer"`
	ConfidenceScore      *float64               `json:"confidence_score,omitempty"`
	Structured           *StructuredExplanation `json:"structured_explanation,omitempty"`
	ExplanationType      ExplanationType        `json:"explanation_type"`
}

// Context returns the cache key the record describes.
func (r ExplanationRecord) Context() ExplainContext {
	return ExplainContext{SKUID: r.SKUID, StoreID: r.StoreID, ForecastDate: r.ForecastDate}
}

// StructuredExplanation breaks the narrative down into factors.
type StructuredExplanation struct {
	PrimaryFactor    PrimaryFactor     `json:"primary_factor"`
	SecondaryFactors []SecondaryFactor `json:"secondary_factors,omitempty"`
}

// PrimaryFactor is the dominant driver behind a forecast.
type PrimaryFactor struct {
	Impact    string `json:"impact"`
	Reasoning string `json:"reasoning"`
}

// SecondaryFactor is a lesser contributing driver.
type SecondaryFactor struct {
	Factor string `json:"factor"`
	Impact string `json:"impact"`
}

// Top influencer tags the backend may return.
const (
	InfluencerWeather           = "weather"
	InfluencerHoliday           = "holiday"
	InfluencerEvent             = "event"
	InfluencerPromotion         = "promotion"
	InfluencerSocialTrend       = "social_trend"
	InfluencerHistoricalPattern = "historical_pattern"
	InfluencerSupplyConstraint  = "supply_constraint"
	InfluencerAnomaly           = "anomaly"
	InfluencerUnknown           = "unknown"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry in the assistant conversation log. Messages are
// append-only and never mutated after creation.
type ChatMessage struct {
	ID        string           `json:"id"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// MessageMetadata carries optional assistant-message annotations.
type MessageMetadata struct {
	Confidence  *float64           `json:"confidence,omitempty"`
	Sources     []string           `json:"sources,omitempty"`
	Suggestions []ActionSuggestion `json:"actionSuggestions,omitempty"`
}

// SuggestionKind classifies an action suggestion.
type SuggestionKind string

const (
	SuggestApprove  SuggestionKind = "approve"
	SuggestSimulate SuggestionKind = "simulate"
	SuggestExplain  SuggestionKind = "explain"
)

// ActionSuggestion is a data-only suggestion attached to an assistant
// message. Invoking one means dispatching its Action; the suggestion itself
// carries no behavior.
type ActionSuggestion struct {
	Kind   SuggestionKind `json:"kind"`
	Label  string         `json:"label"`
	Action Action         `json:"action"`
}

// Action is a uniform command value with no inherent behavior. All
// interpretation lives in ActionDispatcher.
type Action struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// Action types the dispatcher recognizes. Unknown types are accepted and
// ignored so newer backends can emit actions older clients do not understand.
const (
	ActionApplyUnits         = "apply_units"
	ActionFlagData           = "flag_data"
	ActionHighlight          = "highlight"
	ActionShowForecastDetail = "show_forecast_detail"
)

// Highlight describes a chart region the assistant wants focused.
type Highlight struct {
	Date  string `json:"date"`
	SKU   string `json:"sku,omitempty"`
	Store string `json:"store,omitempty"`
}

// ConfidencePoint is one entry of the confidence sparkline history.
type ConfidencePoint struct {
	Date       string  `json:"date"`
	Confidence float64 `json:"confidence"`
}

// ConfidenceHistory is the per-scope confidence trend.
type ConfidenceHistory struct {
	SKUID   string            `json:"sku_id"`
	StoreID string            `json:"store_id"`
	History []ConfidencePoint `json:"history"`
}

// Answer is the assistant's structured reply to one question.
type Answer struct {
	Text        string             `json:"answer"`
	Highlight   *Highlight         `json:"chart_highlight,omitempty"`
	Action      *Action            `json:"action,omitempty"`
	Confidence  *float64           `json:"confidence,omitempty"`
	Sources     []string           `json:"sources,omitempty"`
	Suggestions []ActionSuggestion `json:"suggestions,omitempty"`
}

// HealthStatus reports reachability of the console backend together with a
// per-resource degradation summary.
type HealthStatus struct {
	Healthy           bool     `json:"healthy"`
	ConsoleReachable  bool     `json:"console_reachable"`
	DegradedResources []string `json:"degraded_resources,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// Confidence bounds.
const (
	ConfidenceMin = 0.0
	ConfidenceMax = 1.0
)

// float64ptr is a small helper for optional confidence values.
func float64ptr(v float64) *float64 { return &v }
