package lens

import (
	"fmt"
	"strings"
)

// Responder is a local answerer used when the console copilot is
// unreachable. Implementations must be deterministic and must not perform
// network I/O; they are the second tier of the assistant fallback chain.
type Responder interface {
	Respond(question string, f FilterState) (Answer, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(question string, f FilterState) (Answer, error)

func (fn ResponderFunc) Respond(question string, f FilterState) (Answer, error) {
	return fn(question, f)
}

// RuleResponder answers common forecast questions from keyword patterns and
// the current filter scope. It mirrors the console's own offline copilot
// behavior so degraded sessions keep a familiar voice.
type RuleResponder struct{}

// Respond implements Responder.
func (RuleResponder) Respond(question string, f FilterState) (Answer, error) {
	q := strings.ToLower(question)
	sku := orDefault(f.SKU, "the selected SKU")
	scopeSKU := orDefault(f.SKU, "All SKUs")
	scopeStore := orDefault(f.Store, "All Stores")

	switch {
	case strings.Contains(q, "why") && (strings.Contains(q, "spike") || strings.Contains(q, "increase")):
		return Answer{
			Text: fmt.Sprintf("Demand spikes typically correlate with promotional activities or trending social signals. Check if %s had recent promotions or viral mentions.", sku),
			Highlight: &Highlight{Date: f.EndDate, SKU: f.SKU, Store: f.Store},
			Action: &Action{
				Type: ActionShowForecastDetail,
				Params: map[string]any{
					"sku_id":        f.SKU,
					"store_id":      f.Store,
					"forecast_date": f.EndDate,
				},
			},
		}, nil

	case strings.Contains(q, "drop") || strings.Contains(q, "decline"):
		return Answer{
			Text: "Sales declines often result from weather disruptions, end of promotional periods, or competitive actions. Weather severity and promotion timing are key factors.",
		}, nil

	case strings.Contains(q, "compare"):
		return Answer{
			Text: fmt.Sprintf("Comparing %s across different factors shows weather typically has 5-15%% impact while promotions drive 10-20%% uplift.", orDefault(f.SKU, "selected items")),
		}, nil

	case strings.Contains(q, "top") && strings.Contains(q, "driver"):
		return Answer{
			Text: "Top drivers this period: Social Trends (25% of variance), Weather (20%), Promotions (18%). Check narrative cards for specific events.",
		}, nil

	default:
		return Answer{
			Text: fmt.Sprintf("Based on your filters (%s, %s), I can help analyze demand patterns, influencer impacts, and forecast explanations. Try asking about specific dates or events.", scopeSKU, scopeStore),
		}, nil
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
