package risk

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of AuditStore for demo/test use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]*Record // userHash → records, oldest first
}

// NewMemoryStore creates an in-memory assessment audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]*Record)}
}

func (s *MemoryStore) Record(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	cp.ReasonCodes = append([]string(nil), rec.ReasonCodes...)
	s.records[rec.UserHash] = append(s.records[rec.UserHash], &cp)
	return nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userHash string, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.records[userHash]
	if len(all) == 0 {
		return nil, nil
	}

	// Most recent first, up to limit
	start := len(all) - limit
	if start < 0 {
		start = 0
	}

	result := make([]*Record, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		cp := *all[i]
		cp.ReasonCodes = append([]string(nil), all[i].ReasonCodes...)
		result = append(result, &cp)
	}
	return result, nil
}
