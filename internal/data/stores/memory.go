package stores

import (
	"context"
	"slices"
	"sync"

	"github.com/colonyops/runway/internal/core/store"
)

// MemoryStore is an in-process store.Store. It backs demo mode and tests.
type MemoryStore[T store.Entity] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
}

var _ store.Store[store.Entity] = (*MemoryStore[store.Entity])(nil)

// NewMemoryStore creates a memory store seeded with items.
func NewMemoryStore[T store.Entity](items ...T) *MemoryStore[T] {
	s := &MemoryStore[T]{items: make(map[string]T, len(items))}
	for _, item := range items {
		s.put(item)
	}
	return s
}

// List returns the items in insertion order.
func (s *MemoryStore[T]) List(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

// Get returns the item with the given id.
func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, store.ErrNotFound
	}
	return item, nil
}

// Upsert stores item, keeping its position when it already exists.
func (s *MemoryStore[T]) Upsert(_ context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(item)
	return nil
}

// Delete removes the item with the given id.
func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.items, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// ReplaceAll swaps the whole collection.
func (s *MemoryStore[T]) ReplaceAll(_ context.Context, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.items = make(map[string]T, len(items))
	for _, item := range items {
		s.put(item)
	}
	return nil
}

func (s *MemoryStore[T]) put(item T) {
	id := item.EntityID()
	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = item
}
