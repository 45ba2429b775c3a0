// Package override persists the manual verification flag for the current
// user. While set, it bypasses upstream resolution entirely; it exists for
// admin control and for testing badge behavior without touching the backend.
package override

import (
	"context"

	"platewise/internal/verification/models"
)

// Store persists at most one override, scoped to the current user. Peek is
// non-invasive: a nil Override with a nil error means no override is set.
type Store interface {
	Set(ctx context.Context, isVerified bool, reason string) error
	Clear(ctx context.Context) error
	Peek(ctx context.Context) (*models.Override, error)
}
