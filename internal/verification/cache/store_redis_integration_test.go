//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"platewise/internal/verification/cache"
	"platewise/internal/verification/models"
	"platewise/pkg/platform/sentinel"
	"platewise/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *cache.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = cache.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) makeEntry(subject string, status models.Status) cache.Entry {
	return cache.Entry{
		SubjectKey: subject,
		Result: models.Result{
			Status:     status,
			IsVerified: status == models.StatusApproved,
			Source:     models.SourceStatusField,
		},
		ComputedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func (s *RedisStoreSuite) TestPutGetRoundTrip() {
	ctx := context.Background()
	entry := s.makeEntry(models.SubjectCurrentUser, models.StatusApproved)

	s.Require().NoError(s.store.Put(ctx, entry, 5*time.Minute))

	found, err := s.store.Get(ctx, models.SubjectCurrentUser)
	s.Require().NoError(err)
	s.Equal(entry.Result, found.Result)
	s.True(entry.ComputedAt.Equal(found.ComputedAt))
}

func (s *RedisStoreSuite) TestMissingKeyReturnsNotFound() {
	_, err := s.store.Get(context.Background(), "user:nobody")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestServerSideExpiry() {
	ctx := context.Background()
	entry := s.makeEntry(models.SubjectCurrentUser, models.StatusApproved)

	s.Require().NoError(s.store.Put(ctx, entry, time.Second))
	time.Sleep(1500 * time.Millisecond)

	_, err := s.store.Get(ctx, models.SubjectCurrentUser)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestDeleteAllOnlyTouchesCacheKeys() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, s.makeEntry(models.SubjectCurrentUser, models.StatusApproved), time.Minute))
	s.Require().NoError(s.store.Put(ctx, s.makeEntry(models.SubjectForUser("author-4"), models.StatusNotApplied), time.Minute))
	s.Require().NoError(s.redis.Client.Set(ctx, "unrelated:key", "keep-me", 0).Err())

	s.Require().NoError(s.store.DeleteAll(ctx))

	_, err := s.store.Get(ctx, models.SubjectCurrentUser)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	val, err := s.redis.Client.Get(ctx, "unrelated:key").Result()
	s.Require().NoError(err)
	s.Equal("keep-me", val)
}
