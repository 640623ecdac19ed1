package lens

import (
	"errors"
	"testing"
)

func TestDispatch_ApplyUnits(t *testing.T) {
	var got float64
	d := NewActionDispatcher(ActionHandlers{
		ApplyUnits: func(units float64) error {
			got = units
			return nil
		},
	}, testDebugLogger(t))

	d.Dispatch(Action{Type: ActionApplyUnits, Params: map[string]any{"units": 150.0}})

	if got != 150 {
		t.Errorf("ApplyUnits received %v, want 150", got)
	}
}

func TestDispatch_ApplyUnitsMissingParam(t *testing.T) {
	called := false
	d := NewActionDispatcher(ActionHandlers{
		ApplyUnits: func(units float64) error {
			called = true
			return nil
		},
	}, testDebugLogger(t))

	d.Dispatch(Action{Type: ActionApplyUnits, Params: map[string]any{}})
	d.Dispatch(Action{Type: ActionApplyUnits, Params: map[string]any{"units": "150"}})

	if called {
		t.Error("handler ran without a usable units param")
	}
}

func TestDispatch_ShowForecastDetailParamAliases(t *testing.T) {
	var got ExplainContext
	d := NewActionDispatcher(ActionHandlers{
		ShowForecastDetail: func(ec ExplainContext) error {
			got = ec
			return nil
		},
	}, testDebugLogger(t))

	// Console payloads use sku_id/store_id/forecast_date; the local responder
	// emits sku/store/date.
	d.Dispatch(Action{Type: ActionShowForecastDetail, Params: map[string]any{
		"sku": "SKU_9", "store": "STORE_2", "date": "2025-07-03",
	}})

	want := ExplainContext{SKUID: "SKU_9", StoreID: "STORE_2", ForecastDate: "2025-07-03"}
	if got != want {
		t.Errorf("ShowForecastDetail received %+v, want %+v", got, want)
	}
}

func TestDispatch_Highlight(t *testing.T) {
	var got Highlight
	d := NewActionDispatcher(ActionHandlers{
		Highlight: func(h Highlight) error {
			got = h
			return nil
		},
	}, testDebugLogger(t))

	d.Dispatch(Action{Type: ActionHighlight, Params: map[string]any{
		"date": "2025-07-03", "sku_id": "SKU_1", "store_id": "STORE_1",
	}})

	if got.Date != "2025-07-03" || got.SKU != "SKU_1" || got.Store != "STORE_1" {
		t.Errorf("Highlight received %+v", got)
	}
}

func TestDispatch_UnknownTypeIgnored(t *testing.T) {
	d := NewActionDispatcher(ActionHandlers{
		ApplyUnits: func(units float64) error { t.Fatal("should not run"); return nil },
	}, testDebugLogger(t))

	d.Dispatch(Action{Type: "simulate_scenario", Params: map[string]any{"x": 1}})
}

func TestDispatch_NilHandlerNoOp(t *testing.T) {
	d := NewActionDispatcher(ActionHandlers{}, testDebugLogger(t))
	d.Dispatch(Action{Type: ActionFlagData})
	d.Dispatch(Action{Type: ActionApplyUnits, Params: map[string]any{"units": 5.0}})
}

func TestDispatch_EffectErrorContained(t *testing.T) {
	d := NewActionDispatcher(ActionHandlers{
		FlagData: func() error { return errors.New("backend rejected flag") },
	}, testDebugLogger(t))

	// Must not panic or propagate.
	d.Dispatch(Action{Type: ActionFlagData})
}

func TestDispatch_EffectPanicContained(t *testing.T) {
	d := NewActionDispatcher(ActionHandlers{
		FlagData: func() error { panic("handler bug") },
	}, testDebugLogger(t))

	d.Dispatch(Action{Type: ActionFlagData})
}
