// Package audit records every verification resolution so the evidentiary
// source of a badge can be reconstructed later. Events are append-only and
// transport-agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one resolution outcome, stamped with its provenance.
type Event struct {
	ID         uuid.UUID `json:"id"`
	SubjectKey string    `json:"subject_key"`
	Status     string    `json:"status"`
	Source     string    `json:"source"`
	Verified   bool      `json:"verified"`
	// Client is a short browser/OS summary parsed from the User-Agent of
	// the request that triggered the resolution, when one exists.
	Client     string    `json:"client,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Store persists events. The worker hands over whole drained batches so
// backends can use batch inserts. Recent returns newest-first, capped at limit.
type Store interface {
	AppendBatch(ctx context.Context, events []Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}
