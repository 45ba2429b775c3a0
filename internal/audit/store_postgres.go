package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Schema creates the events table. Applied at startup when Postgres is
// configured; CREATE TABLE IF NOT EXISTS keeps it idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS verification_audit_events (
	id          UUID PRIMARY KEY,
	subject_key TEXT NOT NULL,
	status      TEXT NOT NULL,
	source      TEXT NOT NULL,
	verified    BOOLEAN NOT NULL,
	client      TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS verification_audit_events_occurred_at_idx
	ON verification_audit_events (occurred_at DESC);
`

// PostgresStore persists audit events durably. Batches use unnest so one
// round trip covers the whole drained batch.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema applies the table definition.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]string, len(events))
	subjects := make([]string, len(events))
	statuses := make([]string, len(events))
	sources := make([]string, len(events))
	verified := make([]bool, len(events))
	clients := make([]string, len(events))
	occurred := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID.String()
		subjects[i] = e.SubjectKey
		statuses[i] = e.Status
		sources[i] = e.Source
		verified[i] = e.Verified
		clients[i] = e.Client
		occurred[i] = e.OccurredAt.UTC().Format(time.RFC3339Nano)
	}

	query := `
		INSERT INTO verification_audit_events (id, subject_key, status, source, verified, client, occurred_at)
		SELECT * FROM unnest(
			$1::uuid[], $2::text[], $3::text[], $4::text[], $5::boolean[], $6::text[], $7::timestamptz[]
		)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		pq.Array(ids), pq.Array(subjects), pq.Array(statuses),
		pq.Array(sources), pq.Array(verified), pq.Array(clients), pq.Array(occurred),
	)
	if err != nil {
		return fmt.Errorf("append audit batch: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_key, status, source, verified, client, occurred_at
		FROM verification_audit_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.SubjectKey, &e.Status, &e.Source, &e.Verified, &e.Client, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
