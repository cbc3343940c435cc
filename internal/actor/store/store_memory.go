// Package store persists actor records for the gateway's own /actor
// endpoint. The memory store backs tests and development; the Postgres store
// is the production variant.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fleetgate/internal/capability"
	"fleetgate/pkg/platform/sentinel"
)

// InMemoryStore keeps actor records in a map keyed by lowercased email.
type InMemoryStore struct {
	mu     sync.RWMutex
	actors map[string]*capability.Actor
}

// NewMemory constructs an empty in-memory actor store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{actors: make(map[string]*capability.Actor)}
}

// Put inserts or replaces the record for actor.Email.
func (s *InMemoryStore) Put(_ context.Context, actor *capability.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actors[strings.ToLower(actor.Email)] = actor
	return nil
}

// Fetch returns a copy of the record for email, with an independent bag so a
// caller-held snapshot survives later Put calls.
func (s *InMemoryStore) Fetch(_ context.Context, email string) (*capability.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.actors[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("actor %q: %w", email, sentinel.ErrNotFound)
	}
	snapshot := *record
	snapshot.Capabilities = record.Capabilities.Clone()
	return &snapshot, nil
}

// Delete removes the record for email.
func (s *InMemoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if _, ok := s.actors[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.actors, key)
	return nil
}
