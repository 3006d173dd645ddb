// Package dbtest provides PostgreSQL pools for integration tests. Each pool lives in its own
// throwaway schema; tests are skipped when TEST_DATABASE_URL is not set.
package dbtest

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/shopping-mall/internal/db"
)

const EnvURL = "TEST_DATABASE_URL"

// NewPool returns a pool bound to a fresh schema with all migrations applied and no seed data.
func NewPool(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	pool := NewEmptyPool(tb)

	_, err := db.Bootstrap(context.Background(), pool, db.BootstrapOptions{Seed: false})
	require.NoError(tb, err, "failed to migrate test schema")

	return pool
}

// NewEmptyPool returns a pool bound to a fresh, empty schema.
func NewEmptyPool(tb testing.TB) *pgxpool.Pool {
	tb.Helper()

	url := strings.TrimSpace(os.Getenv(EnvURL))
	if url == "" {
		tb.Skipf("%s is not set, skipping integration test", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	schema := "test_" + strings.ReplaceAll(uuid.Must(uuid.NewV4()).String(), "-", "")

	admin, err := pgx.Connect(ctx, url)
	require.NoError(tb, err, "failed to connect to test database")
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize())
	require.NoError(tb, err, "failed to create test schema")
	require.NoError(tb, admin.Close(ctx))

	poolConfig, err := pgxpool.ParseConfig(url)
	require.NoError(tb, err)
	poolConfig.ConnConfig.RuntimeParams["search_path"] = schema
	poolConfig.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(tb, err)
	require.NoError(tb, pool.Ping(ctx), "failed to ping test database")

	tb.Cleanup(func() {
		pool.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		conn, err := pgx.Connect(ctx, url)
		if err != nil {
			tb.Logf("failed to connect for schema cleanup: %v", err)
			return
		}
		defer conn.Close(ctx)
		if _, err := conn.Exec(ctx, "DROP SCHEMA "+pgx.Identifier{schema}.Sanitize()+" CASCADE"); err != nil {
			tb.Logf("failed to drop test schema %s: %v", schema, err)
		}
	})

	return pool
}

// Truncate empties the given tables and resets their sequences.
func Truncate(tb testing.TB, pool *pgxpool.Pool, tables ...string) {
	tb.Helper()
	idents := make([]string, len(tables))
	for i, t := range tables {
		idents[i] = pgx.Identifier{t}.Sanitize()
	}
	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE "+strings.Join(idents, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(tb, err, "failed to truncate %v", tables)
}
