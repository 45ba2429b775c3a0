package override

import (
	"context"
	"sync"
	"time"

	"platewise/internal/verification/models"
)

// MemoryStore is the non-durable override store used by tests.
type MemoryStore struct {
	mu       sync.Mutex
	override *models.Override
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(ctx context.Context, isVerified bool, reason string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = &models.Override{IsVerified: isVerified, Reason: reason, SetAt: time.Now()}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = nil
	return nil
}

func (s *MemoryStore) Peek(ctx context.Context) (*models.Override, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.override == nil {
		return nil, nil
	}
	copied := *s.override
	return &copied, nil
}
