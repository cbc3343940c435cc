package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists consumed audit events. The Kafka topic is the source
// of truth; this table is the queryable copy the ops review tooling reads.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the audit_events table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS audit_events (
	id BIGSERIAL PRIMARY KEY,
	kind TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	path TEXT NOT NULL DEFAULT '',
	actor_email TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_occurred_at_idx ON audit_events (occurred_at);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate audit_events: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	const q = `
INSERT INTO audit_events (kind, occurred_at, path, actor_email)
VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, q, string(event.Kind), event.Timestamp, event.Path, event.ActorEmail); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events ordered oldest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	const q = `
SELECT kind, occurred_at, path, actor_email
FROM (
	SELECT kind, occurred_at, path, actor_email, id
	FROM audit_events
	ORDER BY id DESC
	LIMIT $1
) latest
ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&kind, &e.Timestamp, &e.Path, &e.ActorEmail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Kind = EventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}
