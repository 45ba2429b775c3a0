package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"platewise/internal/verification/models"
	"platewise/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
}

func (s *MemoryStoreSuite) entry(subject string) Entry {
	return Entry{
		SubjectKey: subject,
		Result: models.Result{
			Status:     models.StatusApproved,
			IsVerified: true,
			Source:     models.SourceGroupMembership,
		},
		ComputedAt: time.Now(),
	}
}

func (s *MemoryStoreSuite) TestPutGetRoundTrip() {
	ctx := context.Background()
	entry := s.entry(models.SubjectCurrentUser)
	s.Require().NoError(s.store.Put(ctx, entry, 5*time.Minute))

	found, err := s.store.Get(ctx, models.SubjectCurrentUser)
	s.Require().NoError(err)
	s.Equal(entry, *found)
}

func (s *MemoryStoreSuite) TestGetMissingReturnsNotFound() {
	_, err := s.store.Get(context.Background(), "user:absent")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, s.entry(models.SubjectCurrentUser), 5*time.Minute))
	s.Require().NoError(s.store.Delete(ctx, models.SubjectCurrentUser))

	_, err := s.store.Get(ctx, models.SubjectCurrentUser)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDeleteAll() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, s.entry(models.SubjectCurrentUser), 5*time.Minute))
	s.Require().NoError(s.store.Put(ctx, s.entry(models.SubjectForUser("author-2")), 5*time.Minute))

	s.Require().NoError(s.store.DeleteAll(ctx))

	_, err := s.store.Get(ctx, models.SubjectCurrentUser)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.Get(ctx, models.SubjectForUser("author-2"))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestLastWriteWins() {
	ctx := context.Background()
	first := s.entry(models.SubjectCurrentUser)
	second := first
	second.Result.Source = models.SourceManualOverride

	s.Require().NoError(s.store.Put(ctx, first, 5*time.Minute))
	s.Require().NoError(s.store.Put(ctx, second, 5*time.Minute))

	found, err := s.store.Get(ctx, models.SubjectCurrentUser)
	s.Require().NoError(err)
	s.Equal(models.SourceManualOverride, found.Result.Source)
}
