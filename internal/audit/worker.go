package audit

import (
	"context"
	"log/slog"
)

// maxBatch caps how many queued events one store write may carry.
const maxBatch = 64

// Worker consumes audit events from the publisher inbox and persists them in
// batches. A store failure is logged, not fatal: losing audit rows must never
// take down the resolution path.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			batch := w.drain(event)
			if err := w.store.AppendBatch(ctx, batch); err != nil {
				w.logger.WarnContext(ctx, "audit append failed",
					"batch_size", len(batch),
					"error", err,
				)
			}
		}
	}
}

// drain greedily collects whatever is already queued behind the first event.
func (w *Worker) drain(first Event) []Event {
	batch := []Event{first}
	for len(batch) < maxBatch {
		select {
		case event := <-w.inbox:
			batch = append(batch, event)
		default:
			return batch
		}
	}
	return batch
}
