package lens

import "testing"

func TestFilterStore_ReplaceAdvancesEpoch(t *testing.T) {
	store := NewFilterStore(DefaultFilters())

	if got := store.Epoch(); got != 1 {
		t.Fatalf("initial epoch = %d, want 1", got)
	}

	next := store.State()
	next.SKU = "SKU_422"
	epoch := store.Replace(next)

	if epoch != 2 {
		t.Errorf("Replace returned epoch %d, want 2", epoch)
	}
	state, current := store.Read()
	if current != 2 {
		t.Errorf("Read epoch = %d, want 2", current)
	}
	if state.SKU != "SKU_422" {
		t.Errorf("state.SKU = %q, want SKU_422", state.SKU)
	}
}

func TestFilterStore_NotifiesAfterUpdate(t *testing.T) {
	store := NewFilterStore(DefaultFilters())

	var observed FilterState
	var observedEpoch uint64
	store.Subscribe(func(state FilterState, epoch uint64) {
		observed = state
		observedEpoch = epoch
		// The store must already hold the new state when notified.
		if current, e := store.Read(); current.Store != state.Store || e < epoch {
			t.Errorf("subscriber observed torn state: store=%+v epoch=%d", current, e)
		}
	})

	next := store.State()
	next.Store = "STORE_9"
	store.Replace(next)

	if observed.Store != "STORE_9" {
		t.Errorf("subscriber state.Store = %q, want STORE_9", observed.Store)
	}
	if observedEpoch != 2 {
		t.Errorf("subscriber epoch = %d, want 2", observedEpoch)
	}
}

func TestFilterStore_SubscribersRunInRegistrationOrder(t *testing.T) {
	store := NewFilterStore(FilterState{})

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		store.Subscribe(func(FilterState, uint64) { order = append(order, i) })
	}

	store.Replace(FilterState{SKU: "SKU_1"})

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("notification order = %v, want [0 1 2]", order)
	}
}

func TestFilterState_Signals(t *testing.T) {
	f := DefaultFilters()

	signals := f.Signals()
	want := []string{"weather", "promotions", "socialTrends"}
	if len(signals) != len(want) {
		t.Fatalf("Signals() = %v, want %v", signals, want)
	}
	for i := range want {
		if signals[i] != want[i] {
			t.Errorf("Signals()[%d] = %q, want %q", i, signals[i], want[i])
		}
	}

	if got := (FilterState{}).Signals(); len(got) != 0 {
		t.Errorf("Signals() on zero state = %v, want none", got)
	}
}

func TestDefaultFilters(t *testing.T) {
	f := DefaultFilters()

	if f.StartDate != "2025-07-01" || f.EndDate != "2025-07-13" {
		t.Errorf("default range = %q..%q", f.StartDate, f.EndDate)
	}
	if f.SKU != "SKU_DEFAULT" || f.Store != "STORE_DEFAULT" {
		t.Errorf("default scope = %q/%q", f.SKU, f.Store)
	}
	if !f.Weather || !f.Promotions || !f.SocialTrends {
		t.Error("external factor toggles should default on")
	}
	if f.Anomalies || f.HighUncertainty || f.BiggestSwings || f.AIOverrides {
		t.Error("insight toggles should default off")
	}
}
