// Package poller refreshes one subject's verification result on an interval
// and reports changes. It backs the live badge: when an override lands or an
// upstream review completes, watchers hear about it within one tick.
package poller

import (
	"context"
	"log/slog"
	"time"

	"platewise/internal/verification/models"
)

// Getter is the slice of the cache the poller needs.
type Getter interface {
	Get(ctx context.Context, subjectKey string) (models.Result, error)
}

// NotifyFunc is called with the previous and new result when they differ.
type NotifyFunc func(previous, current models.Result)

// Poller re-resolves a fixed subject on an interval. Run owns the ticker and
// returns when the context is cancelled, so no timer outlives its caller.
type Poller struct {
	cache      Getter
	subjectKey string
	interval   time.Duration
	notify     NotifyFunc
	logger     *slog.Logger
	kick       chan struct{}

	previous    models.Result
	hasPrevious bool
}

type Option func(*Poller)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) { p.logger = logger }
}

func New(cache Getter, subjectKey string, interval time.Duration, notify NotifyFunc, opts ...Option) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	p := &Poller{
		cache:      cache,
		subjectKey: subjectKey,
		interval:   interval,
		notify:     notify,
		logger:     slog.Default(),
		kick:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Kick requests an immediate refresh ahead of the next tick. Used when the
// caller knows state just changed, e.g. an override was set. Safe to call
// from any goroutine; a pending kick coalesces with later ones.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. The first check happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.check(ctx)
		case <-p.kick:
			p.check(ctx)
		}
	}
}

func (p *Poller) check(ctx context.Context) {
	current, err := p.cache.Get(ctx, p.subjectKey)
	if err != nil {
		p.logger.WarnContext(ctx, "poll refresh failed",
			"subject", p.subjectKey,
			"error", err,
		)
		return
	}

	if p.hasPrevious && changed(p.previous, current) && p.notify != nil {
		p.notify(p.previous, current)
	}
	p.previous = current
	p.hasPrevious = true
}

// changed ignores evidence churn: only the rendered state matters.
func changed(a, b models.Result) bool {
	return a.Status != b.Status || a.IsVerified != b.IsVerified || a.Source != b.Source
}
