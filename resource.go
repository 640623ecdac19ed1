package lens

import (
	"context"
	"sync"
)

// Status describes where a remote resource is in its request lifecycle.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Snapshot is the observable state of a resource at one point in time. On
// error the Data field holds the resource's fixed fallback payload, never a
// zero value, so the view layer always has something coherent to render.
type Snapshot[T any] struct {
	Status     Status
	Data       T
	IsFallback bool
	Epoch      uint64
	Err        error
}

// FetchFunc produces the resource's data for one filter state. Parameters
// must derive deterministically from the state; failures of any kind are
// reported through the error.
type FetchFunc[T any] func(ctx context.Context, f FilterState) (T, error)

// Resource is the generic remote-read contract: fetch data described by the
// current FilterState, normalize it, fall back deterministically on failure.
// Each instance admits at most one observable in-flight request; a filter
// replacement supersedes any outstanding one, whose result is then discarded
// on arrival instead of overwriting fresher data.
type Resource[T any] struct {
	name     string
	store    *FilterStore
	fetch    FetchFunc[T]
	fallback func() T
	debug    *DebugLogger

	mu      sync.Mutex
	snap    Snapshot[T]
	pending uint64 // epoch of the in-flight request, 0 when none
}

// NewResource creates a resource bound to the filter store. The fallback
// constructor must return the same payload every call.
func NewResource[T any](name string, store *FilterStore, fetch FetchFunc[T], fallback func() T, debug *DebugLogger) *Resource[T] {
	return &Resource[T]{
		name:     name,
		store:    store,
		fetch:    fetch,
		fallback: fallback,
		debug:    debug,
		snap:     Snapshot[T]{Status: StatusIdle},
	}
}

// Name identifies the resource in diagnostics.
func (r *Resource[T]) Name() string { return r.name }

// Snapshot returns the current observable state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Degraded reports whether the resource currently renders fallback data.
func (r *Resource[T]) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.IsFallback
}

// Refresh fetches data for the epoch active at call time and returns the
// resulting snapshot.
//
// At most one request runs per epoch: a Refresh for an epoch that is already
// loading or already materialized returns the current snapshot untouched. A
// result arriving after the store advanced past its epoch is discarded; the
// caller receives it flagged with ErrStaleEpoch, but the published snapshot
// is left for the newer epoch's refresh to fill.
func (r *Resource[T]) Refresh(ctx context.Context) Snapshot[T] {
	state, epoch := r.store.Read()

	r.mu.Lock()
	if r.pending == epoch || (r.snap.Epoch == epoch && r.snap.Status != StatusIdle) {
		snap := r.snap
		r.mu.Unlock()
		return snap
	}
	r.pending = epoch
	r.snap.Status = StatusLoading
	r.mu.Unlock()

	data, err := r.fetch(ctx, state)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == epoch {
		r.pending = 0
	}

	if current := r.store.Epoch(); current != epoch {
		// Superseded while in flight. Never write into the current view.
		r.debug.Log("%s: discarding response for stale epoch %d (current %d)", r.name, epoch, current)
		return Snapshot[T]{Status: StatusError, Data: r.fallback(), IsFallback: true, Epoch: epoch, Err: ErrStaleEpoch}
	}

	if err != nil {
		r.debug.LogDegraded(r.name, err)
		r.snap = Snapshot[T]{Status: StatusError, Data: r.fallback(), IsFallback: true, Epoch: epoch, Err: err}
		return r.snap
	}

	r.snap = Snapshot[T]{Status: StatusSuccess, Data: data, Epoch: epoch}
	return r.snap
}

// Reset returns the resource to idle, forgetting any published data. The
// next Refresh for the current epoch will fetch again.
func (r *Resource[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = 0
	r.snap = Snapshot[T]{Status: StatusIdle}
}
