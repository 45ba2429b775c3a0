// Package client talks to the upstream recipe-platform API: the profile
// endpoint and the verification-application endpoint. Every call is bounded
// by the configured timeout and translated into sentinel errors so the
// service layer never sees raw transport failures.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"platewise/internal/auth/tokens"
	"platewise/internal/verification/metrics"
	"platewise/internal/verification/models"
	"platewise/pkg/platform/sentinel"
)

const (
	profilePath     = "/api/users/profile/"
	applicationPath = "/api/verification/status/"
)

type Client struct {
	baseURL string
	http    *http.Client
	tokens  tokens.Source
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the underlying HTTP client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, timeout time.Duration, source tokens.Source, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  source,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchProfile returns the profile mapping for the given user, or for the
// current user when userID is empty.
func (c *Client) FetchProfile(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	if err := c.getJSON(ctx, profilePath, userID, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// FetchApplication returns the verification-application record, or
// sentinel.ErrNotFound when no application exists (upstream 404).
func (c *Client) FetchApplication(ctx context.Context, userID string) (*models.Application, error) {
	var app models.Application
	if err := c.getJSON(ctx, applicationPath, userID, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) getJSON(ctx context.Context, path, userID string, out any) error {
	endpoint := c.baseURL + path
	if userID != "" {
		endpoint += "?user_id=" + url.QueryEscape(userID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("read auth token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	c.metrics.ObserveUpstreamLatency(time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return fmt.Errorf("upstream %s timed out: %w", path, sentinel.ErrUnavailable)
		}
		return fmt.Errorf("upstream %s: %v: %w", path, err, sentinel.ErrUnavailable)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("upstream %s: %w", path, sentinel.ErrNotFound)
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return fmt.Errorf("upstream %s rejected credential: %w", path, sentinel.ErrUnauthenticated)
	case res.StatusCode >= 300:
		return fmt.Errorf("upstream %s returned %d: %w", path, res.StatusCode, sentinel.ErrUnavailable)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode upstream %s response: %v: %w", path, err, sentinel.ErrUnavailable)
	}
	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
