package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/foundersportal/portal/backend/go-services/internal/directory"
)

// MemoryRepo is an in-memory repository used when MongoDB is not configured
// and in unit tests.
type MemoryRepo[T directory.Record] struct {
	mu    sync.RWMutex
	kind  directory.Kind[T]
	store map[string]T
}

func NewMemoryRepo[T directory.Record](kind directory.Kind[T]) *MemoryRepo[T] {
	return &MemoryRepo[T]{kind: kind, store: make(map[string]T)}
}

func (m *MemoryRepo[T]) Create(_ context.Context, item T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[item.Meta().ID] = item
	return nil
}

func (m *MemoryRepo[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[id]; ok {
		return d, nil
	}
	var zero T
	return zero, ErrNotFound
}

func (m *MemoryRepo[T]) List(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, 0, len(m.store))
	for _, d := range m.store {
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(m.kind.SortKey(out[i])) < strings.ToLower(m.kind.SortKey(out[j]))
	})
	return out, nil
}

func (m *MemoryRepo[T]) Replace(_ context.Context, item T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := item.Meta().ID
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	m.store[id] = item
	return nil
}

func (m *MemoryRepo[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}
