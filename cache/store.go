// Package cache provides a keyed single-value store whose readers can wait
// for a value to arrive.
package cache

import (
	"context"
	"errors"
	"sync"
)

// ErrRemoved is returned by WaitFor when the key is removed while waiting.
var ErrRemoved = errors.New("cache: key removed")

// slot is one cell of the store. A filled slot is never mutated again;
// Set on a filled slot installs a fresh one.
type slot[V any] struct {
	value   V
	filled  bool
	removed bool
	gen     uint64

	// ready is closed once the slot is filled or removed.
	ready chan struct{}
}

func newSlot[V any](gen uint64) *slot[V] {
	return &slot[V]{gen: gen, ready: make(chan struct{})}
}

// Store maps keys to slots that are either empty or filled with one value.
//
// Readers either take the current value (Get) or suspend until one is
// stored (WaitFor). Writers fill a slot (Set, Fill) or clear it and start a
// new generation (Delete). A removed key stays removed until it is restored
// or Set. Store is safe for concurrent use.
type Store[K comparable, V any] struct {
	mu      sync.Mutex
	slots   map[K]*slot[V]
	removed map[K]struct{}
}

// New creates an empty store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		slots:   make(map[K]*slot[V]),
		removed: make(map[K]struct{}),
	}
}

// Set fills the slot for key and resolves every pending WaitFor on it. A
// removed key is restored.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.removed, key)

	sl, ok := s.slots[key]
	if !ok || sl.filled {
		gen := uint64(0)
		if ok {
			gen = sl.gen
		}

		sl = newSlot[V](gen)
		s.slots[key] = sl
	}

	sl.value = value
	sl.filled = true
	close(sl.ready)
}

// Delete clears the slot for key, starts a new generation and returns it.
//
// Values already handed out are unaffected. Callers still waiting on an
// empty slot stay suspended until the next Set or Fill. Delete does nothing
// for a removed key and returns zero.
func (s *Store[K, V]) Delete(key K) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, gone := s.removed[key]; gone {
		return 0
	}

	sl, ok := s.slots[key]
	if !ok {
		s.slots[key] = newSlot[V](1)

		return 1
	}

	if sl.filled {
		sl = newSlot[V](sl.gen + 1)
		s.slots[key] = sl

		return sl.gen
	}

	sl.gen++

	return sl.gen
}

// Fill stores value only if key still holds the empty slot of generation
// gen, as returned by Delete. It reports whether the value was stored.
// Generation zero never matches.
func (s *Store[K, V]) Fill(key K, gen uint64, value V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[key]
	if !ok || gen == 0 || sl.gen != gen || sl.filled {
		return false
	}

	sl.value = value
	sl.filled = true
	close(sl.ready)

	return true
}

// Get returns the value for key if its slot is filled. It never blocks.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[key]
	if !ok || !sl.filled {
		var zero V

		return zero, false
	}

	return sl.value, true
}

// WaitFor returns the value for key, suspending until the slot is filled.
// It returns ctx.Err() if ctx ends first and ErrRemoved if the key is or
// becomes removed.
func (s *Store[K, V]) WaitFor(ctx context.Context, key K) (V, error) {
	var zero V

	s.mu.Lock()

	sl, ok := s.slots[key]
	if !ok {
		if _, gone := s.removed[key]; gone {
			s.mu.Unlock()

			return zero, ErrRemoved
		}

		sl = newSlot[V](0)
		s.slots[key] = sl
	}

	s.mu.Unlock()

	select {
	case <-sl.ready:
		if sl.removed {
			return zero, ErrRemoved
		}

		return sl.value, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Remove drops key from the store. Pending and later waiters receive
// ErrRemoved, and Delete and Fill leave the key alone until Restore.
func (s *Store[K, V]) Remove(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removed[key] = struct{}{}

	sl, ok := s.slots[key]
	if !ok {
		return
	}

	delete(s.slots, key)

	if !sl.filled {
		sl.removed = true
		close(sl.ready)
	}
}

// Restore undoes Remove so the key can be waited on and filled again.
func (s *Store[K, V]) Restore(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.removed, key)
}

// Generation reports how many times key has been deleted since its slot was
// created. It is zero for unknown keys.
func (s *Store[K, V]) Generation(key K) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sl, ok := s.slots[key]; ok {
		return sl.gen
	}

	return 0
}

// Len returns the number of keys with a slot, filled or not.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.slots)
}
