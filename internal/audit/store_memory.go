package audit

import (
	"context"
	"sync"
)

// maxMemoryEvents bounds the in-memory ring so a long-lived process does not
// grow without limit.
const maxMemoryEvents = 1000

// MemoryStore is the default event sink when Postgres is not configured.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AppendBatch(ctx context.Context, events []Event) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	if len(s.events) > maxMemoryEvents {
		s.events = s.events[len(s.events)-maxMemoryEvents:]
	}
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]Event, 0, limit)
	for i := len(s.events) - 1; i >= len(s.events)-limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}
