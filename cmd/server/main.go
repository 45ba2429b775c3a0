package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"platewise/internal/audit"
	"platewise/internal/auth/tokens"
	"platewise/internal/platform/config"
	"platewise/internal/platform/httpserver"
	"platewise/internal/platform/localstore"
	"platewise/internal/platform/logger"
	"platewise/internal/platform/postgres"
	redisplatform "platewise/internal/platform/redis"
	httptransport "platewise/internal/transport/http"
	"platewise/internal/verification/badge"
	"platewise/internal/verification/cache"
	"platewise/internal/verification/client"
	"platewise/internal/verification/metrics"
	"platewise/internal/verification/models"
	"platewise/internal/verification/override"
	"platewise/internal/verification/poller"
	"platewise/internal/verification/service"
)

// main wires dependencies and owns process lifecycle. Business logic lives in
// the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local, err := localstore.New(cfg.DataDir)
	if err != nil {
		log.Error("opening local store failed", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	// Per-request Authorization headers win over the stored token.
	tokenSource := tokens.ContextSource{Fallback: tokens.NewStoreSource(local)}
	m := metrics.New()

	upstream := client.New(cfg.UpstreamBaseURL, cfg.ClientTimeout, tokenSource,
		client.WithLogger(log),
		client.WithMetrics(m),
	)

	auditStore, cleanupAudit, err := buildAuditStore(ctx, cfg)
	if err != nil {
		log.Error("audit store setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanupAudit()

	publisher := audit.NewPublisher(256, log)
	worker := audit.NewWorker(auditStore, publisher.Inbox(), log)

	svc := service.New(upstream, tokenSource,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditor(publisher),
	)

	overrides := override.NewFileStore(local)

	redisClient, err := redisplatform.New(cfg)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	var cacheStore cache.Store = cache.NewMemoryStore()
	if redisClient != nil {
		defer redisClient.Close()
		cacheStore = cache.NewRedisStore(redisClient.Client)
	}

	statusCache, err := cache.New(cacheStore, overrides, svc.Resolve, cfg.CacheTTL,
		cache.WithLogger(log),
		cache.WithMetrics(m),
	)
	if err != nil {
		log.Error("cache setup failed", "error", err)
		os.Exit(1)
	}

	handler := httptransport.NewHandler(statusCache, overrides, auditStore, log)
	if redisClient != nil {
		handler.AddHealthCheck("redis", redisClient.Health)
	}
	router := httptransport.NewRouter(handler, cfg.AdminKeyHash, log)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting platewise", "addr", cfg.Addr, "upstream", cfg.UpstreamBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if cfg.PollInterval > 0 {
		watch := poller.New(statusCache, models.SubjectCurrentUser, cfg.PollInterval,
			func(previous, current models.Result) {
				log.Info("verification status changed",
					"from", previous.Status,
					"to", current.Status,
					"badge", badge.Label(current),
				)
			},
			poller.WithLogger(log),
		)
		g.Go(func() error {
			if err := watch.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// buildAuditStore picks Postgres when a DSN is configured, else the bounded
// in-memory ring.
func buildAuditStore(ctx context.Context, cfg config.Config) (audit.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		return audit.NewMemoryStore(), func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	store := audit.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}
