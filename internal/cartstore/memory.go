package cartstore

import (
	"context"
	"sync"

	"github.com/binhvu284/nobleco-sub000/domain"
)

// MemoryStore is the single-node fallback when no redis is configured,
// and the backend unit tests run against.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]domain.CartItem)}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Get(_ context.Context, key string) ([]domain.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items, ok := m.carts[key]
	if !ok {
		return nil, ErrCartNotFound
	}
	// return copy
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, items []domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]domain.CartItem, len(items))
	copy(cp, items)
	m.carts[key] = cp
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, key)
	return nil
}
