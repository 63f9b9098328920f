// Package testutil provides shared helpers for the Postgres integration
// tests. Everything here keys off TEST_DATABASE_URL: without it the helpers
// skip the calling test, so `go test ./...` stays green on a laptop with no
// database.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/backpackor/planner/migrations"
)

// EnvDSN names the variable holding the integration database DSN.
const EnvDSN = "TEST_DATABASE_URL"

// MigrateMain is the body of a package TestMain. With a test database
// configured it applies every embedded migration before running the tests;
// without one it just runs them, and the integration tests skip themselves.
//
//	func TestMain(m *testing.M) { os.Exit(testutil.MigrateMain(m)) }
func MigrateMain(m *testing.M) int {
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		return m.Run()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("testutil.MigrateMain: open: %v", err)
	}
	provider, err := NewProvider(db)
	if err != nil {
		log.Fatalf("testutil.MigrateMain: %v", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		log.Fatalf("testutil.MigrateMain: migrate up: %v", err)
	}
	db.Close()

	return m.Run()
}

// NewProvider returns a goose Provider over the embedded migrations.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("create goose provider: %w", err)
	}
	return p, nil
}

// NewPool opens a pool on the test database, closed when the test ends.
// Repo tests usually want BeginTx instead.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := requireDSN(t)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB opens the test database through database/sql, which goose needs.
// The connection is closed when the test ends.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := requireDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// BeginTx opens a transaction that is rolled back when the test ends, so
// every integration test sees a clean database.
func BeginTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := NewPool(t)

	tx, err := pool.Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.BeginTx: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skip(EnvDSN + " not set; skipping integration test")
	}
	return dsn
}
