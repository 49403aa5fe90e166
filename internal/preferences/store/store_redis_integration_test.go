//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"reviewapp/internal/preferences/store"
	"reviewapp/pkg/platform/sentinel"
	"reviewapp/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.Redis
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedis(s.redis.Client.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	_, err := s.store.Load(ctx, store.KeyUserID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Save(ctx, store.KeyUserID, "u-42"))
	value, err := s.store.Load(ctx, store.KeyUserID)
	s.Require().NoError(err)
	s.Equal("u-42", value)
}

func (s *RedisStoreSuite) TestLoadMany() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, store.KeyThemeMode, "dark"))

	values, err := s.store.LoadMany(ctx, []store.Key{store.KeyThemeMode, store.KeyUserID})
	s.Require().NoError(err)
	s.Equal(map[store.Key]string{store.KeyThemeMode: "dark"}, values)
}

func (s *RedisStoreSuite) TestKeyPrefixIsolation() {
	ctx := context.Background()
	deviceA := store.NewRedis(s.redis.Client.Client, store.WithKeyPrefix("device-a:"))
	deviceB := store.NewRedis(s.redis.Client.Client, store.WithKeyPrefix("device-b:"))

	s.Require().NoError(deviceA.Save(ctx, store.KeyThemeMode, "light"))
	_, err := deviceB.Load(ctx, store.KeyThemeMode)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestClosedClientIsStorageFailure() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.store.Load(ctx, store.KeyUserID)
	s.ErrorIs(err, store.ErrStorage)
}
