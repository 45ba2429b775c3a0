//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"platewise/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	pg := containers.NewPostgresContainer(s.T())
	s.store = NewPostgresStore(pg.DB)
	require.NoError(s.T(), s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.store.db.ExecContext(context.Background(), "TRUNCATE verification_audit_events")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestAppendAndReadBack() {
	ctx := context.Background()
	base := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	batch := []Event{
		{ID: uuid.New(), SubjectKey: "current-user", Status: "approved", Source: "profile_flag", Verified: true, Client: "Firefox 115 / Linux", OccurredAt: base},
		{ID: uuid.New(), SubjectKey: "user:7", Status: "pending", Source: "verification_endpoint", OccurredAt: base.Add(time.Minute)},
	}
	s.Require().NoError(s.store.AppendBatch(ctx, batch))

	events, err := s.store.Recent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)

	s.Run("newest first", func() {
		s.Equal("user:7", events[0].SubjectKey)
		s.Equal("current-user", events[1].SubjectKey)
	})

	s.Run("fields round-trip", func() {
		s.Equal(batch[0].ID, events[1].ID)
		s.Equal("approved", events[1].Status)
		s.Equal("profile_flag", events[1].Source)
		s.True(events[1].Verified)
		s.Equal("Firefox 115 / Linux", events[1].Client)
		s.True(events[1].OccurredAt.Equal(base))
	})
}

func (s *PostgresStoreSuite) TestAppendIsIdempotentPerID() {
	ctx := context.Background()
	event := Event{ID: uuid.New(), SubjectKey: "current-user", Status: "approved", Source: "profile_flag", Verified: true, OccurredAt: time.Now().UTC()}

	s.Require().NoError(s.store.AppendBatch(ctx, []Event{event}))
	s.Require().NoError(s.store.AppendBatch(ctx, []Event{event}))

	events, err := s.store.Recent(ctx, 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PostgresStoreSuite) TestRecentHonoursLimit() {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		event := Event{ID: uuid.New(), SubjectKey: "current-user", Status: "not_applied", Source: "none", OccurredAt: time.Now().UTC()}
		s.Require().NoError(s.store.AppendBatch(ctx, []Event{event}))
	}

	events, err := s.store.Recent(ctx, 3)
	s.Require().NoError(err)
	s.Len(events, 3)
}

func (s *PostgresStoreSuite) TestAppendEmptyBatchIsNoOp() {
	s.Require().NoError(s.store.AppendBatch(context.Background(), nil))
}
