package store

import (
	"sort"
	"sync"
	"time"
)

// Clock supplies the current time. Injectable so tests can control TTL and
// ordering decisions deterministically.
type Clock func() time.Time

// Item pairs a stored value with its key and last-touched timestamp.
type Item[K comparable, V any] struct {
	Key     K
	Value   V
	Touched time.Time
}

// entry carries its own mutex so mutations serialize per record rather than
// per store; unrelated keys never contend beyond the map-level read lock.
type entry[V any] struct {
	mu      sync.Mutex
	value   V
	touched time.Time
}

// Store is a concurrency-safe map from K to V with per-entry timestamps.
// The zero value is not usable; construct with New.
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[V]
	clock   Clock
}

// New constructs an empty store. A nil clock defaults to time.Now.
func New[K comparable, V any](clock Clock) *Store[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &Store[K, V]{entries: make(map[K]*entry[V]), clock: clock}
}

// Put inserts or replaces the value for key, refreshing its timestamp.
func (s *Store[K, V]) Put(key K, value V) {
	now := s.clock()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		e.mu.Lock()
		e.value = value
		e.touched = now
		e.mu.Unlock()
		return
	}
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		// Lost the race to another inserter; replace in place.
		e.mu.Lock()
		e.value = value
		e.touched = now
		e.mu.Unlock()
	} else {
		s.entries[key] = &entry[V]{value: value, touched: now}
	}
	s.mu.Unlock()
}

// Get returns the current value for key, or the zero value and false.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	e.mu.Lock()
	v := e.value
	e.mu.Unlock()
	return v, true
}

// GetItem returns the value together with its last-touched timestamp.
func (s *Store[K, V]) GetItem(key K) (Item[K, V], bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Item[K, V]{}, false
	}
	e.mu.Lock()
	it := Item[K, V]{Key: key, Value: e.value, Touched: e.touched}
	e.mu.Unlock()
	return it, true
}

// Touch refreshes the last-touched timestamp of an existing entry.
func (s *Store[K, V]) Touch(key K) bool {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	e.touched = s.clock()
	e.mu.Unlock()
	return true
}

// Update applies fn to the current value of key as a single atomic step.
// fn returns the replacement value and whether to apply it; a false return
// leaves the entry untouched. Update reports whether a change was applied.
// Concurrent readers never observe the record mid-mutation.
func (s *Store[K, V]) Update(key K, fn func(V) (V, bool)) bool {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	next, apply := fn(e.value)
	if !apply {
		return false
	}
	e.value = next
	e.touched = s.clock()
	return true
}

// Upsert atomically creates or mutates the entry for key. fn receives the
// current value (zero if absent) and an existence flag and returns the value
// to store.
func (s *Store[K, V]) Upsert(key K, fn func(current V, exists bool) V) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry[V]{}
		s.entries[key] = e
	}
	e.mu.Lock()
	s.mu.Unlock()
	e.value = fn(e.value, ok)
	e.touched = s.clock()
	e.mu.Unlock()
}

// Delete removes the entry for key. Removing an absent key is a no-op.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len returns the number of stored entries.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a point-in-time copy of every entry. The map lock is
// released before per-entry copies are taken, so writers are never blocked
// for the duration of the iteration.
func (s *Store[K, V]) Snapshot() []Item[K, V] {
	s.mu.RLock()
	refs := make(map[K]*entry[V], len(s.entries))
	for k, e := range s.entries {
		refs[k] = e
	}
	s.mu.RUnlock()

	items := make([]Item[K, V], 0, len(refs))
	for k, e := range refs {
		e.mu.Lock()
		items = append(items, Item[K, V]{Key: k, Value: e.value, Touched: e.touched})
		e.mu.Unlock()
	}
	return items
}

// List returns a consistent snapshot of values matching filter, sorted by
// less. Both callbacks run on copies, never under a lock, so they may be
// arbitrarily slow without blocking writers. A nil filter matches everything;
// a nil less leaves the order unspecified.
func (s *Store[K, V]) List(filter func(V) bool, less func(a, b V) bool) []V {
	items := s.Snapshot()
	values := make([]V, 0, len(items))
	for _, it := range items {
		if filter == nil || filter(it.Value) {
			values = append(values, it.Value)
		}
	}
	if less != nil {
		sort.SliceStable(values, func(i, j int) bool { return less(values[i], values[j]) })
	}
	return values
}

// Sweep removes every entry the predicate marks expired and returns the
// number removed. The predicate runs on copies, never under a lock. Before
// deleting, the entry's identity and timestamp are re-checked under its
// lock, so an entry refreshed or replaced after the predicate ran survives.
func (s *Store[K, V]) Sweep(expired func(key K, value V, touched time.Time) bool) int {
	s.mu.RLock()
	refs := make(map[K]*entry[V], len(s.entries))
	for k, e := range s.entries {
		refs[k] = e
	}
	s.mu.RUnlock()

	removed := 0
	for k, e := range refs {
		e.mu.Lock()
		value, touched := e.value, e.touched
		e.mu.Unlock()
		if !expired(k, value, touched) {
			continue
		}
		s.mu.Lock()
		if cur, ok := s.entries[k]; ok && cur == e {
			cur.mu.Lock()
			// A touch since the predicate ran means the entry is no
			// longer the one judged expired.
			if cur.touched.Equal(touched) {
				delete(s.entries, k)
				removed++
			}
			cur.mu.Unlock()
		}
		s.mu.Unlock()
	}
	return removed
}
