//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fleetgate/internal/session/store"
	"fleetgate/pkg/platform/sentinel"
	"fleetgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedis(s.redis.Client, time.Hour)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) newRecord() *store.Record {
	now := time.Now()
	return &store.Record{
		ID:         uuid.New(),
		ActorEmail: "ops@fleet.example",
		Device:     "Firefox on Linux",
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(time.Hour),
	}
}

func (s *RedisStoreSuite) TestCreateFindRoundTrip() {
	ctx := context.Background()
	record := s.newRecord()
	s.Require().NoError(s.store.Create(ctx, record))

	got, err := s.store.Find(ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(record.ActorEmail, got.ActorEmail)
	s.Equal(record.Device, got.Device)
}

func (s *RedisStoreSuite) TestFindMissing() {
	_, err := s.store.Find(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestExpiredRecord() {
	ctx := context.Background()
	record := s.newRecord()
	record.ExpiresAt = time.Now().Add(-time.Minute)
	s.Require().NoError(s.store.Create(ctx, record))

	_, err := s.store.Find(ctx, record.ID)
	s.ErrorIs(err, sentinel.ErrExpired)
}

func (s *RedisStoreSuite) TestTouch() {
	ctx := context.Background()
	record := s.newRecord()
	s.Require().NoError(s.store.Create(ctx, record))

	seen := time.Now().Add(10 * time.Minute)
	s.Require().NoError(s.store.Touch(ctx, record.ID, seen))

	got, err := s.store.Find(ctx, record.ID)
	s.Require().NoError(err)
	s.WithinDuration(seen, got.LastSeenAt, time.Second)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	record := s.newRecord()
	s.Require().NoError(s.store.Create(ctx, record))
	s.Require().NoError(s.store.Delete(ctx, record.ID))

	_, err := s.store.Find(ctx, record.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, record.ID), sentinel.ErrNotFound)
}
