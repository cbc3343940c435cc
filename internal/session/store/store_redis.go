package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"fleetgate/pkg/platform/sentinel"
)

const sessionKeyPrefix = "fg:session:"

// RedisStore is the production session store: records expire with the key
// TTL, so no sweeper is needed.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed session store. Records live for ttl
// unless deleted on logout first.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(sessionID uuid.UUID) string {
	return sessionKeyPrefix + sessionID.String()
}

func (s *RedisStore) Create(ctx context.Context, record *Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(record.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, sessionID uuid.UUID) (*Record, error) {
	payload, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	if record.Expired(time.Now()) {
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrExpired)
	}
	return &record, nil
}

func (s *RedisStore) Touch(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	record, err := s.Find(ctx, sessionID)
	if err != nil {
		return err
	}
	record.LastSeenAt = at
	return s.Create(ctx, record)
}

func (s *RedisStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	deleted, err := s.client.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	return nil
}
