package override

import (
	"context"
	"time"

	"platewise/internal/platform/localstore"
	"platewise/internal/verification/models"
)

// StorageKey is the durable key-value slot holding the override.
const StorageKey = "verification_override"

// FileStore keeps the override in the durable local store so it survives
// process restarts, matching how the web client kept it in local storage.
type FileStore struct {
	store *localstore.Store
	clock func() time.Time
}

type FileStoreOption func(*FileStore)

// WithClock sets the clock used to stamp SetAt, for tests.
func WithClock(clock func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewFileStore(store *localstore.Store, opts ...FileStoreOption) *FileStore {
	fs := &FileStore{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

func (s *FileStore) Set(ctx context.Context, isVerified bool, reason string) error {
	_ = ctx
	return s.store.Set(StorageKey, models.Override{
		IsVerified: isVerified,
		Reason:     reason,
		SetAt:      s.clock(),
	})
}

func (s *FileStore) Clear(ctx context.Context) error {
	_ = ctx
	return s.store.Delete(StorageKey)
}

func (s *FileStore) Peek(ctx context.Context) (*models.Override, error) {
	_ = ctx
	var o models.Override
	ok, err := s.store.Get(StorageKey, &o)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &o, nil
}
