package checkout

import (
	"context"
	"sync"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/cart"
)

// MemoryOrderStore keeps placed orders in memory. Used when no database
// is configured.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	byUser map[string][]*Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{byUser: make(map[string][]*Order)}
}

func (m *MemoryOrderStore) Create(_ context.Context, order *Order) error {
	cp := *order
	cp.Lines = append([]cart.LineItem(nil), order.Lines...)

	m.mu.Lock()
	defer m.mu.Unlock()
	// Newest first.
	m.byUser[order.UserHash] = append([]*Order{&cp}, m.byUser[order.UserHash]...)
	return nil
}

func (m *MemoryOrderStore) ListByUser(_ context.Context, userHash string, limit int) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := m.byUser[userHash]
	if limit > 0 && limit < len(orders) {
		orders = orders[:limit]
	}
	out := make([]*Order, len(orders))
	for i, o := range orders {
		cp := *o
		cp.Lines = append([]cart.LineItem(nil), o.Lines...)
		out[i] = &cp
	}
	return out, nil
}
