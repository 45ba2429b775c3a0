package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platewise/internal/verification/models"
)

type scriptedGetter struct {
	mu      sync.Mutex
	results []models.Result
	calls   int
}

func (g *scriptedGetter) Get(ctx context.Context, subjectKey string) (models.Result, error) {
	_ = ctx
	_ = subjectKey
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	idx := g.calls - 1
	if idx >= len(g.results) {
		idx = len(g.results) - 1
	}
	return g.results[idx], nil
}

func (g *scriptedGetter) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type changeRecorder struct {
	mu      sync.Mutex
	changes []models.Result
}

func (r *changeRecorder) notify(_, current models.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, current)
}

func (r *changeRecorder) recorded() []models.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Result(nil), r.changes...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPollerNotifiesOnChange(t *testing.T) {
	getter := &scriptedGetter{results: []models.Result{
		{Status: models.StatusPending},
		{Status: models.StatusApproved, IsVerified: true, Source: models.SourceVerificationEndpoint},
	}}
	recorder := &changeRecorder{}

	p := New(getter, models.SubjectCurrentUser, 10*time.Millisecond, recorder.notify, WithLogger(discardLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(recorder.recorded()) >= 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	changes := recorder.recorded()
	assert.Equal(t, models.StatusApproved, changes[0].Status)
	assert.True(t, changes[0].IsVerified)
}

func TestPollerSuppressesUnchangedResults(t *testing.T) {
	getter := &scriptedGetter{results: []models.Result{
		{Status: models.StatusApproved, IsVerified: true, Source: models.SourceProfileFlag},
	}}
	recorder := &changeRecorder{}

	p := New(getter, models.SubjectCurrentUser, 5*time.Millisecond, recorder.notify, WithLogger(discardLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		return getter.callCount() >= 3
	}, time.Second, time.Millisecond)

	cancel()
	<-done

	assert.Empty(t, recorder.recorded())
}

func TestPollerKickTriggersImmediateCheck(t *testing.T) {
	getter := &scriptedGetter{results: []models.Result{
		{Status: models.StatusPending},
	}}

	p := New(getter, models.SubjectCurrentUser, time.Hour, nil, WithLogger(discardLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		return getter.callCount() == 1
	}, time.Second, time.Millisecond)

	p.Kick()
	require.Eventually(t, func() bool {
		return getter.callCount() == 2
	}, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	getter := &scriptedGetter{results: []models.Result{{Status: models.StatusPending}}}
	p := New(getter, models.SubjectCurrentUser, time.Hour, nil, WithLogger(discardLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
