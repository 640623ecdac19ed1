package lens

import "sync"

// FilterStore owns the current FilterState. It is the only shared mutable
// value in the orchestration core: the state is always replaced as a whole,
// never mutated field by field, so subscribers can detect "the query changed"
// by epoch comparison alone and never observe a torn intermediate state.
type FilterStore struct {
	mu          sync.Mutex
	state       FilterState
	epoch       uint64
	subscribers []func(FilterState, uint64)
}

// NewFilterStore creates a store holding the given initial state at epoch 1.
func NewFilterStore(initial FilterState) *FilterStore {
	return &FilterStore{state: initial, epoch: 1}
}

// Read returns the current state and its epoch.
func (s *FilterStore) Read() (FilterState, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.epoch
}

// State returns the current state.
func (s *FilterStore) State() FilterState {
	state, _ := s.Read()
	return state
}

// Epoch returns the current epoch.
func (s *FilterStore) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Replace installs next as the current state, advances the epoch, and then
// notifies subscribers in registration order. Update happens strictly before
// any notification, so a subscriber reading the store always sees the state
// it was notified about or a newer one.
func (s *FilterStore) Replace(next FilterState) uint64 {
	s.mu.Lock()
	s.state = next
	s.epoch++
	epoch := s.epoch
	subs := make([]func(FilterState, uint64), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next, epoch)
	}
	return epoch
}

// Subscribe registers fn to run after every replacement. Subscriptions are
// for the lifetime of the store; the orchestration core registers a fixed set
// at construction and there is no unsubscribe.
func (s *FilterStore) Subscribe(fn func(state FilterState, epoch uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
