package lens

import (
	"context"
	"errors"
	"sync"
	"testing"
)

var testContext = ExplainContext{SKUID: "SKU_422", StoreID: "STORE_5", ForecastDate: "2025-07-11"}

func testRecord(ec ExplainContext) ExplanationRecord {
	return ExplanationRecord{
		SKUID:                ec.SKUID,
		StoreID:              ec.StoreID,
		ForecastDate:         ec.ForecastDate,
		NarrativeExplanation: "Clear weather lifted foot traffic.",
		TopInfluencer:        InfluencerWeather,
		ConfidenceScore:      float64ptr(0.87),
		ExplanationType:      ExplanationModel,
	}
}

func TestExplanationCache_ResolvedIsIdempotent(t *testing.T) {
	calls := 0
	cache := NewExplanationCache(func(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
		calls++
		return testRecord(ec), nil
	}, testDebugLogger(t))

	first, err := cache.Explain(context.Background(), testContext)
	if err != nil {
		t.Fatalf("Explain returned error: %v", err)
	}
	second, err := cache.Explain(context.Background(), testContext)
	if err != nil {
		t.Fatalf("Explain returned error: %v", err)
	}

	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if first.NarrativeExplanation != second.NarrativeExplanation || first.SKUID != second.SKUID {
		t.Errorf("second Explain differs from first: %+v vs %+v", second, first)
	}
	if cache.State(testContext) != EntryResolved {
		t.Errorf("State = %q, want %q", cache.State(testContext), EntryResolved)
	}
}

func TestExplanationCache_ConcurrentExplainSingleRequest(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	started := make(chan struct{})
	release := make(chan struct{})

	cache := NewExplanationCache(func(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
		mu.Lock()
		calls++
		if calls == 1 {
			close(started)
		}
		mu.Unlock()
		<-release
		return testRecord(ec), nil
	}, testDebugLogger(t))

	results := make(chan ExplanationRecord, 2)
	go func() {
		rec, _ := cache.Explain(context.Background(), testContext)
		results <- rec
	}()
	<-started
	go func() {
		rec, _ := cache.Explain(context.Background(), testContext)
		results <- rec
	}()
	close(release)

	a, b := <-results, <-results

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("fetch called %d times for concurrent Explain, want 1", calls)
	}
	if a.NarrativeExplanation != b.NarrativeExplanation {
		t.Errorf("concurrent callers observed different records")
	}
}

func TestExplanationCache_FailureStoresSyntheticRecord(t *testing.T) {
	calls := 0
	cache := NewExplanationCache(func(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
		calls++
		return ExplanationRecord{}, errors.New("console unreachable")
	}, testDebugLogger(t))

	rec, err := cache.Explain(context.Background(), testContext)
	if err != nil {
		t.Fatalf("Explain returned error: %v", err)
	}
	if rec.ExplanationType != ExplanationError {
		t.Errorf("ExplanationType = %q, want %q", rec.ExplanationType, ExplanationError)
	}
	if rec.ConfidenceScore == nil || *rec.ConfidenceScore != 0 {
		t.Errorf("ConfidenceScore = %v, want 0", rec.ConfidenceScore)
	}
	if rec.NarrativeExplanation != FallbackExplanationNarrative {
		t.Errorf("NarrativeExplanation = %q", rec.NarrativeExplanation)
	}

	// Retries are explicit: a second Explain returns the stored error record
	// without a new request.
	cache.Explain(context.Background(), testContext)
	if calls != 1 {
		t.Errorf("fetch called %d times after failure, want 1 (no automatic retry)", calls)
	}
	if cache.State(testContext) != EntryFailed {
		t.Errorf("State = %q, want %q", cache.State(testContext), EntryFailed)
	}
}

func TestExplanationCache_InvalidateForcesRefetch(t *testing.T) {
	calls := 0
	cache := NewExplanationCache(func(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
		calls++
		if calls == 1 {
			return ExplanationRecord{}, errors.New("boom")
		}
		return testRecord(ec), nil
	}, testDebugLogger(t))

	cache.Explain(context.Background(), testContext)
	cache.Invalidate(testContext)

	rec, err := cache.Explain(context.Background(), testContext)
	if err != nil {
		t.Fatalf("Explain returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("fetch called %d times, want 2 after Invalidate", calls)
	}
	if rec.ExplanationType != ExplanationModel {
		t.Errorf("ExplanationType = %q, want %q after retry", rec.ExplanationType, ExplanationModel)
	}
}

func TestExplanationCache_MissingContext(t *testing.T) {
	cache := NewExplanationCache(func(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
		t.Fatal("fetch should not run for an invalid context")
		return ExplanationRecord{}, nil
	}, testDebugLogger(t))

	_, err := cache.Explain(context.Background(), ExplainContext{SKUID: "SKU_1"})
	if !errors.Is(err, ErrMissingContext) {
		t.Fatalf("Explain error = %v, want ErrMissingContext", err)
	}
}

func TestExplanationCache_PutDoesNotOverwriteResolved(t *testing.T) {
	cache := NewExplanationCache(func(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
		return testRecord(ec), nil
	}, testDebugLogger(t))

	cache.Explain(context.Background(), testContext)

	replacement := testRecord(testContext)
	replacement.NarrativeExplanation = "rewritten"
	cache.Put(replacement)

	rec, ok := cache.Get(testContext)
	if !ok {
		t.Fatal("Get returned no record")
	}
	if rec.NarrativeExplanation == "rewritten" {
		t.Error("Put overwrote a resolved record")
	}
}

func TestExplanationCache_PutReplacesFailed(t *testing.T) {
	cache := NewExplanationCache(func(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
		return ExplanationRecord{}, errors.New("boom")
	}, testDebugLogger(t))

	cache.Explain(context.Background(), testContext)
	cache.Put(testRecord(testContext))

	rec, ok := cache.Get(testContext)
	if !ok || rec.ExplanationType != ExplanationModel {
		t.Errorf("Put did not replace failed entry: %+v", rec)
	}
	if cache.State(testContext) != EntryResolved {
		t.Errorf("State = %q, want %q", cache.State(testContext), EntryResolved)
	}
}

func TestExplanationCache_SurvivesFilterChanges(t *testing.T) {
	// The cache is keyed by explicit context, not epoch: records stay valid
	// after filter replacement.
	cache := NewExplanationCache(func(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
		return testRecord(ec), nil
	}, testDebugLogger(t))

	cache.Explain(context.Background(), testContext)

	if _, ok := cache.Get(testContext); !ok {
		t.Fatal("record not retained")
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}
