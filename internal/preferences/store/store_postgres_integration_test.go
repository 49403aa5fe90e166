//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"reviewapp/internal/preferences/store"
	"reviewapp/pkg/platform/sentinel"
	"reviewapp/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.store = store.NewPostgres(s.postgres.DB, store.WithClock(func() time.Time { return fixed }))
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.postgres.DB.ExecContext(context.Background(), `TRUNCATE preferences`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestUpsert() {
	ctx := context.Background()

	_, err := s.store.Load(ctx, store.KeyThemeMode)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Save(ctx, store.KeyThemeMode, "light"))
	s.Require().NoError(s.store.Save(ctx, store.KeyThemeMode, "dark"))

	value, err := s.store.Load(ctx, store.KeyThemeMode)
	s.Require().NoError(err)
	s.Equal("dark", value)
}

func (s *PostgresStoreSuite) TestLoadMany() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, store.KeyUserID, "u-42"))
	s.Require().NoError(s.store.Save(ctx, store.KeyThemeMode, "system"))

	values, err := s.store.LoadMany(ctx, []store.Key{store.KeyUserID, store.KeyThemeMode})
	s.Require().NoError(err)
	s.Equal(map[store.Key]string{store.KeyUserID: "u-42", store.KeyThemeMode: "system"}, values)
}

func (s *PostgresStoreSuite) TestMigrateIsIdempotent() {
	s.NoError(s.store.Migrate(context.Background()))
}
