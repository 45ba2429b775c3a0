// Package cache memoizes verification results per subject. Entries stay fresh
// for a TTL; error outcomes are stored for inspection but never count as
// fresh, so the next lookup retries immediately.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"platewise/internal/verification/metrics"
	"platewise/internal/verification/models"
	"platewise/pkg/platform/sentinel"
)

// Entry is one memoized resolution.
type Entry struct {
	SubjectKey string        `json:"subject_key"`
	Result     models.Result `json:"result"`
	ComputedAt time.Time     `json:"computed_at"`
}

// Store persists entries. Get returns sentinel.ErrNotFound when no entry
// exists for the subject.
type Store interface {
	Get(ctx context.Context, subjectKey string) (*Entry, error)
	Put(ctx context.Context, entry Entry, ttl time.Duration) error
	Delete(ctx context.Context, subjectKey string) error
	DeleteAll(ctx context.Context) error
}

// OverridePeeker is the slice of the override store the cache needs.
type OverridePeeker interface {
	Peek(ctx context.Context) (*models.Override, error)
}

// ResolveFunc runs the full resolution pipeline for a subject. The cache
// calls it on every miss; it owns all upstream I/O.
type ResolveFunc func(ctx context.Context, subjectKey string) models.Result

// Cache fronts the resolution pipeline. Concurrent lookups for the same
// subject are deliberately not deduplicated: duplicate fetches are harmless
// and last write wins.
type Cache struct {
	store     Store
	overrides OverridePeeker
	resolve   ResolveFunc
	ttl       time.Duration
	clock     func() time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithClock sets the freshness clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func New(store Store, overrides OverridePeeker, resolve ResolveFunc, ttl time.Duration, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if resolve == nil {
		return nil, fmt.Errorf("resolve func is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}

	c := &Cache{
		store:     store,
		overrides: overrides,
		resolve:   resolve,
		ttl:       ttl,
		clock:     time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the subject's verification result, from cache when fresh.
// On a miss the manual override is consulted first (current user only), then
// the resolution pipeline runs and the outcome is stored.
func (c *Cache) Get(ctx context.Context, subjectKey string) (models.Result, error) {
	if subjectKey == "" {
		return models.Result{}, fmt.Errorf("subject key is required: %w", sentinel.ErrInvalidState)
	}

	entry, err := c.store.Get(ctx, subjectKey)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		// A broken store degrades to recompute rather than failing the lookup.
		c.logger.WarnContext(ctx, "cache store read failed", "subject", subjectKey, "error", err)
	}
	if entry != nil && c.fresh(*entry) {
		c.metrics.IncrementCacheHits()
		return entry.Result, nil
	}
	c.metrics.IncrementCacheMisses()

	result := c.compute(ctx, subjectKey)

	stored := Entry{SubjectKey: subjectKey, Result: result, ComputedAt: c.clock()}
	if err := c.store.Put(ctx, stored, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "cache store write failed", "subject", subjectKey, "error", err)
	}
	return result, nil
}

// Invalidate removes one subject's entry.
func (c *Cache) Invalidate(ctx context.Context, subjectKey string) error {
	return c.store.Delete(ctx, subjectKey)
}

// InvalidateAll clears every entry.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	return c.store.DeleteAll(ctx)
}

func (c *Cache) compute(ctx context.Context, subjectKey string) models.Result {
	if subjectKey == models.SubjectCurrentUser && c.overrides != nil {
		o, err := c.overrides.Peek(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "override peek failed", "error", err)
		} else if o != nil {
			c.metrics.IncrementOverrideReads()
			return o.Result()
		}
	}
	return c.resolve(ctx, subjectKey)
}

// fresh reports whether an entry may be served without recomputation.
// Error results are never fresh: the next lookup must retry. A logged-out
// result flips as soon as a token appears, so it is recomputed too; that
// recompute costs no network call.
func (c *Cache) fresh(entry Entry) bool {
	if !entry.Result.Status.Definite() {
		return false
	}
	return c.clock().Sub(entry.ComputedAt) < c.ttl
}
