package lens

import (
	"context"
	"sync"
)

// EntryState describes one explanation cache entry.
type EntryState string

const (
	EntryIdle     EntryState = "idle"
	EntryLoading  EntryState = "loading"
	EntryResolved EntryState = "resolved"
	EntryFailed   EntryState = "failed"
)

// ExplainFunc fetches the explanation for one forecast point.
type ExplainFunc func(ctx context.Context, ec ExplainContext) (ExplanationRecord, error)

type cacheEntry struct {
	state  EntryState
	record ExplanationRecord
	done   chan struct{} // closed once the entry leaves loading
}

// ExplanationCache de-duplicates and memoizes single-point explanations.
// Chart-point clicks, KPI tiles and story-card actions all funnel through it.
//
// Entries move idle → loading → resolved|failed per context key. Entering
// loading for a key that is already loading joins the existing in-flight
// request instead of issuing a duplicate. Resolved records are kept for the
// lifetime of the session: explanations are immutable facts about a specific
// historical point and stay valid across filter changes, so the cache is
// keyed by explicit context, not by epoch. Failed entries hold a synthetic
// error record so retries are explicit user actions via Invalidate, never
// automatic.
type ExplanationCache struct {
	fetch ExplainFunc
	debug *DebugLogger

	mu      sync.Mutex
	entries map[ExplainContext]*cacheEntry
}

// NewExplanationCache creates an empty cache around the given fetcher.
func NewExplanationCache(fetch ExplainFunc, debug *DebugLogger) *ExplanationCache {
	return &ExplanationCache{
		fetch:   fetch,
		debug:   debug,
		entries: make(map[ExplainContext]*cacheEntry),
	}
}

// Explain returns the explanation for the given context, fetching it at most
// once. Calling Explain on a resolved or failed key returns the stored record
// without a new request. A fetch failure is absorbed into the synthetic error
// record; the only errors returned are an invalid context or a cancelled
// wait.
func (c *ExplanationCache) Explain(ctx context.Context, ec ExplainContext) (ExplanationRecord, error) {
	if ec.SKUID == "" || ec.StoreID == "" || ec.ForecastDate == "" {
		return ExplanationRecord{}, ErrMissingContext
	}

	c.mu.Lock()
	if entry, ok := c.entries[ec]; ok {
		if entry.state != EntryLoading {
			record := entry.record
			c.mu.Unlock()
			return record, nil
		}
		done := entry.done
		c.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ExplanationRecord{}, ctx.Err()
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if entry, ok := c.entries[ec]; ok && entry.state != EntryLoading {
			return entry.record, nil
		}
		// Invalidated while we waited; report the degraded record without
		// poisoning the cache.
		return FallbackExplanation(ec), nil
	}

	entry := &cacheEntry{state: EntryLoading, done: make(chan struct{})}
	c.entries[ec] = entry
	c.mu.Unlock()

	record, err := c.fetch(ctx, ec)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.debug.LogDegraded("explanation", err)
		record = FallbackExplanation(ec)
	}

	// Only publish if the entry was not invalidated mid-flight.
	if current, ok := c.entries[ec]; ok && current == entry {
		if err != nil {
			entry.state = EntryFailed
		} else {
			entry.state = EntryResolved
		}
		entry.record = record
	}
	close(entry.done)

	return record, nil
}

// Get returns the stored record for a context, if any. Loading entries do
// not count as stored.
func (c *ExplanationCache) Get(ec ExplainContext) (ExplanationRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[ec]
	if !ok || entry.state == EntryLoading {
		return ExplanationRecord{}, false
	}
	return entry.record, true
}

// State reports the cache state for a context.
func (c *ExplanationCache) State(ec ExplainContext) EntryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[ec]
	if !ok {
		return EntryIdle
	}
	return entry.state
}

// Put stores an already-fetched record, as produced by batch warming. A
// resolved entry is never overwritten; a failed one is.
func (c *ExplanationCache) Put(record ExplanationRecord) {
	ec := record.Context()
	if ec.SKUID == "" || ec.StoreID == "" || ec.ForecastDate == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[ec]; ok && entry.state != EntryFailed {
		return
	}
	c.entries[ec] = &cacheEntry{state: EntryResolved, record: record, done: closedChan()}
}

// Invalidate removes a context so the next Explain fetches again.
func (c *ExplanationCache) Invalidate(ec ExplainContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ec)
}

// Len returns the number of settled entries.
func (c *ExplanationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, entry := range c.entries {
		if entry.state != EntryLoading {
			n++
		}
	}
	return n
}

// Records returns all settled records, in no particular order.
func (c *ExplanationCache) Records() []ExplanationRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := make([]ExplanationRecord, 0, len(c.entries))
	for _, entry := range c.entries {
		if entry.state != EntryLoading {
			records = append(records, entry.record)
		}
	}
	return records
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
