package database

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/ibcoder/portfolio/internal/config"
	"github.com/ibcoder/portfolio/internal/testutils"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
)

// TestMain loads the test-specific environment variables from `.env.test`.
func TestMain(m *testing.M) {
	if err := godotenv.Load("../../.env.test"); err != nil {
		log.Println("Warning: .env.test file not found, relying on environment variables.")
	}
	os.Exit(m.Run())
}

// setupSQLiteStore opens an isolated in-memory database for one test.
func setupSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()

	store, err := OpenSQLite(context.Background(), testutils.MemoryDSN())
	require.NoError(t, err, "failed to open sqlite store")

	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})
	return store
}

// setupSurrealStore connects to the SurrealDB instance described by the
// environment, skipping when none is configured.
func setupSurrealStore(t *testing.T) *SurrealStore {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	cfg := config.FromEnv()
	if cfg.SurrealURL == "" {
		t.Skip("SURREAL_URL not set")
	}

	ctx := context.Background()
	store, err := OpenSurreal(ctx, SurrealConfig{
		URL:       cfg.SurrealURL,
		Namespace: cfg.DBNs,
		Database:  cfg.DBDb,
		User:      cfg.DBUser,
		Password:  cfg.DBPass,
	})
	require.NoError(t, err, "failed to connect to test database")

	t.Cleanup(func() {
		for _, table := range []string{"user", "verification", "contact_message"} {
			_ = execute(context.Background(), store.db, "DELETE "+table, nil)
		}
		store.Close(context.Background())
	})
	return store
}
