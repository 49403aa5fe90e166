//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"reviewapp/internal/platform/config"
	"reviewapp/internal/platform/postgres"
)

// PostgresContainer is a throwaway Postgres opened through the service's pool
// constructor.
type PostgresContainer struct {
	DSN string
	DB  *sql.DB
}

// NewPostgresContainer starts postgres:16-alpine and tears it down with the
// test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("reviewapp"),
		tcpostgres.WithUsername("reviewapp"),
		tcpostgres.WithPassword("reviewapp"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "postgres connection string")

	db, err := postgres.Open(ctx, config.PostgresConfig{DSN: dsn, MaxOpenConns: 4})
	require.NoError(t, err, "connect to postgres")
	t.Cleanup(func() { _ = db.Close() })

	return &PostgresContainer{DSN: dsn, DB: db}
}
