package lens

import "fmt"

// ActionHandlers binds the handful of effects the host application supports.
// Any nil handler makes its action a logged no-op.
type ActionHandlers struct {
	// ApplyUnits applies a quantity adjustment to the current forecast.
	ApplyUnits func(units float64) error
	// FlagData marks the current scope's data for review.
	FlagData func() error
	// Highlight focuses a chart region.
	Highlight func(h Highlight) error
	// ShowForecastDetail surfaces the explanation for one forecast point.
	ShowForecastDetail func(ec ExplainContext) error
}

// ActionDispatcher is the single sink for Action values emitted by the
// assistant, story cards, or the narrative panel. Dispatch is synchronous and
// side-effect only: it returns nothing and never panics or propagates an
// effect failure; those are caught and logged on the diagnostic channel.
// Unknown action types are accepted and produce no effect.
type ActionDispatcher struct {
	handlers ActionHandlers
	debug    *DebugLogger
}

// NewActionDispatcher creates a dispatcher over the given handlers.
func NewActionDispatcher(handlers ActionHandlers, debug *DebugLogger) *ActionDispatcher {
	return &ActionDispatcher{handlers: handlers, debug: debug}
}

// Dispatch routes one action to its bound effect.
func (d *ActionDispatcher) Dispatch(action Action) {
	defer func() {
		if r := recover(); r != nil {
			d.debug.LogError("dispatch "+action.Type, fmt.Errorf("effect panicked: %v", r))
		}
	}()

	var err error
	switch action.Type {
	case ActionApplyUnits:
		if d.handlers.ApplyUnits == nil {
			d.debug.Log("dispatch %s: no handler bound", action.Type)
			return
		}
		units, ok := numberParam(action.Params, "units")
		if !ok {
			d.debug.Log("dispatch %s: missing units param", action.Type)
			return
		}
		err = d.handlers.ApplyUnits(units)

	case ActionFlagData:
		if d.handlers.FlagData == nil {
			d.debug.Log("dispatch %s: no handler bound", action.Type)
			return
		}
		err = d.handlers.FlagData()

	case ActionHighlight:
		if d.handlers.Highlight == nil {
			d.debug.Log("dispatch %s: no handler bound", action.Type)
			return
		}
		err = d.handlers.Highlight(Highlight{
			Date:  stringParam(action.Params, "date"),
			SKU:   firstStringParam(action.Params, "sku", "sku_id"),
			Store: firstStringParam(action.Params, "store", "store_id"),
		})

	case ActionShowForecastDetail:
		if d.handlers.ShowForecastDetail == nil {
			d.debug.Log("dispatch %s: no handler bound", action.Type)
			return
		}
		err = d.handlers.ShowForecastDetail(ExplainContext{
			SKUID:        firstStringParam(action.Params, "sku_id", "sku"),
			StoreID:      firstStringParam(action.Params, "store_id", "store"),
			ForecastDate: firstStringParam(action.Params, "forecast_date", "date"),
		})

	default:
		// Forward compatible: newer consoles may emit actions this client
		// does not understand yet.
		d.debug.Log("dispatch %s: unrecognized action type, ignored", action.Type)
		return
	}

	if err != nil {
		d.debug.LogError("dispatch "+action.Type, err)
	}
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func firstStringParam(params map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringParam(params, key); v != "" {
			return v
		}
	}
	return ""
}

func numberParam(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
