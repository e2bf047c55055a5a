// Package kv provides a generic thread-safe keyed collection.
package kv

import "sync"

// Store is a thread-safe map. Setting an existing key overwrites the value.
type Store[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// New creates an empty store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		data: make(map[K]V),
	}
}

// Get retrieves a value by key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// Set stores a value by key.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes a key and reports whether it was present.
func (s *Store[K, V]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	delete(s.data, key)
	return ok
}

// Update applies fn to the value stored under key while holding the write
// lock. fn is not called when the key is absent.
func (s *Store[K, V]) Update(key K, fn func(V) V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if !ok {
		return val, false
	}
	val = fn(val)
	s.data[key] = val
	return val, true
}

// Replace swaps the entire contents for values keyed by keyFn. When two
// values share a key the later one wins.
func (s *Store[K, V]) Replace(values []V, keyFn func(V) K) {
	data := make(map[K]V, len(values))
	for _, v := range values {
		data[keyFn(v)] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}

// Len returns the number of items in the store.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Values returns a copy of all values in unspecified order.
func (s *Store[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make([]V, 0, len(s.data))
	for _, v := range s.data {
		values = append(values, v)
	}
	return values
}
