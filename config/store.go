// Package config provides a generic, hot-reloadable configuration system.
// Settings live in a TOML file that is loaded into a typed Store and reloaded
// through fsnotify-based file watching.
package config

import (
	"sync"
	"sync/atomic"
)

// Store holds the current configuration value with atomic read/swap semantics.
// T must be a struct type.
type Store[T any] struct {
	value atomic.Pointer[T]

	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(old, new_ *T)
	order     []int
}

// NewStore creates a config store with the given initial value.
func NewStore[T any](initial *T) *Store[T] {
	s := &Store[T]{listeners: make(map[int]func(old, new_ *T))}
	s.value.Store(initial)
	return s
}

// Get returns the current config value (zero-lock read).
func (s *Store[T]) Get() *T {
	return s.value.Load()
}

// Swap atomically replaces the config and notifies listeners in registration
// order. Swapping in the pointer already held is a no-op.
func (s *Store[T]) Swap(new_ *T) *T {
	old := s.value.Swap(new_)
	if old == new_ {
		return old
	}

	s.mu.RLock()
	fns := make([]func(old, new_ *T), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(old, new_)
	}
	return old
}

// OnChange registers a listener called whenever the config changes. The
// returned function removes it.
func (s *Store[T]) OnChange(fn func(old, new_ *T)) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}
