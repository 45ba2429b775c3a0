package cache

import (
	"context"
	"sync"
	"time"

	"platewise/pkg/platform/sentinel"
)

// MemoryStore keeps entries in-process. Expiry is judged by the cache's
// freshness check, so no background sweeping is needed; stale entries are
// simply overwritten on the next resolution.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(ctx context.Context, subjectKey string) (*Entry, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[subjectKey]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := entry
	return &copied, nil
}

func (s *MemoryStore) Put(ctx context.Context, entry Entry, ttl time.Duration) error {
	_ = ctx
	_ = ttl
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.SubjectKey] = entry
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, subjectKey string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, subjectKey)
	return nil
}

func (s *MemoryStore) DeleteAll(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
	return nil
}
