package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fleetgate/internal/capability"
	"fleetgate/pkg/platform/sentinel"
)

// PostgresStore persists actor records in PostgreSQL. Capabilities are stored
// as a JSONB column so the bag stays a whole-value replacement, matching the
// no-partial-merge rule everywhere else.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed actor store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the actors table when it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS actors (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			home_location TEXT NOT NULL DEFAULT '',
			capabilities JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("migrate actors table: %w", err)
	}
	return nil
}

// Put upserts the record keyed by email, replacing the capability bag
// wholesale.
func (s *PostgresStore) Put(ctx context.Context, actor *capability.Actor) error {
	bag, err := json.Marshal(actor.Capabilities)
	if err != nil {
		return fmt.Errorf("marshal capability bag: %w", err)
	}
	actorID := actor.ID
	if actorID == uuid.Nil {
		actorID = uuid.New()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO actors (id, email, name, role, home_location, capabilities, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			home_location = EXCLUDED.home_location,
			capabilities = EXCLUDED.capabilities,
			updated_at = now()`,
		actorID, strings.ToLower(actor.Email), actor.Name, string(actor.Role), actor.HomeLocation, bag)
	if err != nil {
		return fmt.Errorf("upsert actor: %w", err)
	}
	return nil
}

// Fetch returns the record for email.
func (s *PostgresStore) Fetch(ctx context.Context, email string) (*capability.Actor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, home_location, capabilities
		FROM actors WHERE email = $1`, strings.ToLower(email))

	var (
		record capability.Actor
		role   string
		bag    []byte
	)
	err := row.Scan(&record.ID, &record.Email, &record.Name, &role, &record.HomeLocation, &bag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("actor %q: %w", email, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch actor: %w", err)
	}
	record.Role = capability.Role(role)
	if err := json.Unmarshal(bag, &record.Capabilities); err != nil {
		return nil, fmt.Errorf("decode capability bag: %w", err)
	}
	if record.Capabilities == nil {
		record.Capabilities = capability.Bag{}
	}
	return &record, nil
}

// Delete removes the record for email.
func (s *PostgresStore) Delete(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM actors WHERE email = $1`, strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("delete actor: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
