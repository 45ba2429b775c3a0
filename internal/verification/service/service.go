// Package service orchestrates one verification resolution: token check,
// concurrent upstream fetches, application-status precedence, and the
// predicate fallback. The cache calls into it on every miss.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"platewise/internal/audit"
	"platewise/internal/auth/tokens"
	"platewise/internal/verification/metrics"
	"platewise/internal/verification/models"
	"platewise/internal/verification/resolver"
	"platewise/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Upstream fetches profile and verification-application records from the
// recipe service.
type Upstream interface {
	FetchProfile(ctx context.Context, userID string) (models.Profile, error)
	FetchApplication(ctx context.Context, userID string) (*models.Application, error)
}

// Auditor receives one event per completed resolution.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service resolves a subject's verification status from upstream state. It is
// pure orchestration: predicate logic lives in resolver, freshness in cache.
type Service struct {
	upstream Upstream
	tokens   tokens.Source
	auditor  Auditor
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	clock    func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func New(upstream Upstream, source tokens.Source, opts ...Option) *Service {
	s := &Service{
		upstream: upstream,
		tokens:   source,
		logger:   slog.Default(),
		tracer:   otel.Tracer("platewise/verification"),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve computes the verification result for one subject key. It never
// returns an error: every failure mode collapses into a Result whose Status
// carries the outcome, so callers have a single shape to render and cache.
func (s *Service) Resolve(ctx context.Context, subjectKey string) models.Result {
	ctx, span := s.tracer.Start(ctx, "verification.resolve",
		trace.WithAttributes(attribute.String("subject", subjectKey)))
	defer span.End()

	result := s.resolve(ctx, subjectKey)

	span.SetAttributes(
		attribute.String("status", string(result.Status)),
		attribute.String("source", result.Source),
	)
	s.metrics.ObserveResolution(string(result.Status), result.Source)
	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			SubjectKey: subjectKey,
			Status:     string(result.Status),
			Source:     result.Source,
			Verified:   result.IsVerified,
			Client:     audit.ClientFromContext(ctx),
		})
	}
	return result
}

func (s *Service) resolve(ctx context.Context, subjectKey string) models.Result {
	token, err := s.tokens.Token(ctx)
	if err != nil || !tokens.Usable(token, s.clock()) {
		// No usable credential means no upstream call is worth making.
		return models.Result{Status: models.StatusNotLoggedIn, Source: models.SourceNone}
	}

	userID := models.UserIDFromSubject(subjectKey)

	var (
		profile     models.Profile
		application *models.Application
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.upstream.FetchProfile(gctx, userID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		app, err := s.upstream.FetchApplication(gctx, userID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// No application on file: predicates decide.
				return nil
			}
			// Anything else means an on-file application may exist whose
			// definite status we cannot read. Predicates must not answer
			// in its place: a rejected application would surface as
			// approved and stay cached for the full TTL.
			return err
		}
		application = app
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, sentinel.ErrUnauthenticated) {
			return models.Result{Status: models.StatusNotLoggedIn, Source: models.SourceNone}
		}
		s.logger.WarnContext(ctx, "upstream fetch failed",
			"subject", subjectKey,
			"error", err,
		)
		return models.Result{Status: models.StatusError, Source: models.SourceNone}
	}

	if status, ok := applicationStatus(application); ok {
		return applicationResult(status, application, profile)
	}
	result := resolver.ResolveAt(profile, true, s.clock())
	if result.IsVerified {
		result.Evidence = resolver.ExtractEvidence(profile)
	}
	return result
}

// applicationStatus extracts a definite status from the application record.
// Anything outside pending/rejected/approved falls through to the predicates.
func applicationStatus(app *models.Application) (models.Status, bool) {
	if app == nil {
		return "", false
	}
	switch models.Status(strings.ToLower(strings.TrimSpace(app.Status))) {
	case models.StatusPending:
		return models.StatusPending, true
	case models.StatusRejected:
		return models.StatusRejected, true
	case models.StatusApproved:
		return models.StatusApproved, true
	default:
		return "", false
	}
}

func applicationResult(status models.Status, app *models.Application, profile models.Profile) models.Result {
	result := models.Result{
		Status:     status,
		IsVerified: status == models.StatusApproved,
		Source:     models.SourceVerificationEndpoint,
	}
	if !result.IsVerified {
		return result
	}
	evidence := resolver.ExtractEvidence(profile)
	if app.BusinessName != "" {
		if evidence == nil {
			evidence = &models.Evidence{}
		}
		evidence.BusinessName = app.BusinessName
	}
	result.Evidence = evidence
	return result
}
