package cart

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory cart store. Carts are ephemeral per-shopper
// state, so this is the only store implementation.
type MemoryStore struct {
	carts map[string]*Cart
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory cart store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*Cart)}
}

func (m *MemoryStore) Get(ctx context.Context, userHash string) (*Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.carts[userHash]
	if !ok {
		// Lines stays non-nil so an empty cart serializes as [].
		return &Cart{UserHash: userHash, Lines: []LineItem{}}, nil
	}
	// Return a copy to prevent races on the shared pointer
	return c.Clone(), nil
}

func (m *MemoryStore) Put(ctx context.Context, cart *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.carts[cart.UserHash] = cart.Clone()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, userHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, userHash)
	return nil
}
