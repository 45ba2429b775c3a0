package testutil

import "net/http"

// WithToken sets the upstream-style Authorization header on a request.
// This simulates what the browser client sends after login.
func WithToken(req *http.Request, token string) *http.Request {
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	return req
}

// WithAdminKey sets the admin key header used by override and cache
// invalidation endpoints.
func WithAdminKey(req *http.Request, key string) *http.Request {
	if key != "" {
		req.Header.Set("X-Admin-Key", key)
	}
	return req
}
