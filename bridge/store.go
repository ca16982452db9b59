package bridge

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Store is a keyed store of live objects referenced by opaque handles
type Store[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	gauge prometheus.Gauge
}

// NewStore creates store, gauge tracks the number of entries and can be nil
func NewStore[T any](gauge prometheus.Gauge) *Store[T] {
	return &Store[T]{items: map[string]T{}, gauge: gauge}
}

// NewHandle returns a fresh random handle
func NewHandle() string {
	return uuid.NewString()
}

// Put stores item under a fresh handle
func (s *Store[T]) Put(item T) string {
	handle := NewHandle()
	s.Insert(handle, item)
	return handle
}

// Insert stores item under handle
func (s *Store[T]) Insert(handle string, item T) {
	s.mu.Lock()
	_, exists := s.items[handle]
	s.items[handle] = item
	s.mu.Unlock()
	if !exists && s.gauge != nil {
		s.gauge.Inc()
	}
}

// Get returns item for handle
func (s *Store[T]) Get(handle string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[handle]
	return item, ok
}

// Delete removes and returns item for handle
func (s *Store[T]) Delete(handle string) (T, bool) {
	s.mu.Lock()
	item, ok := s.items[handle]
	delete(s.items, handle)
	s.mu.Unlock()
	if ok && s.gauge != nil {
		s.gauge.Dec()
	}
	return item, ok
}

// Drain removes and returns all items
func (s *Store[T]) Drain() []T {
	s.mu.Lock()
	result := make([]T, 0, len(s.items))
	for handle, item := range s.items {
		result = append(result, item)
		delete(s.items, handle)
	}
	s.mu.Unlock()
	if s.gauge != nil {
		s.gauge.Sub(float64(len(result)))
	}
	return result
}

// Len returns number of items
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
