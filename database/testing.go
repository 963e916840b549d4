package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vulntagger/auth"
)

var (
	testDB       *DB
	testKeychain *auth.Keychain
)

// GetTestDB returns the shared test database connection.
// Available after TestMain has run and SetupTestDB succeeded.
func GetTestDB() *DB {
	return testDB
}

// GetTestKeychain returns the keychain the test database was seeded
// with. Hashes derived through any other salt will not verify.
func GetTestKeychain() *auth.Keychain {
	return testKeychain
}

// SetupTestDB creates a test database connection and runs migrations.
// Should be called once in TestMain, not in individual tests.
// Migrations are embedded inline (not read from files) for test isolation.
func SetupTestDB(dbURL string) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := runTestMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runTestMigrations(db *DB) error {
	ctx := context.Background()

	migrations := []string{
		`
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			base_url TEXT NOT NULL DEFAULT '',
			secret_hash TEXT UNIQUE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_projects_secret_hash ON projects(secret_hash);
		`,
		`
		CREATE TABLE IF NOT EXISTS vulns (
			id BIGSERIAL PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id),
			page_url TEXT NOT NULL,
			selector TEXT NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			status TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			steps TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_vulns_project_id ON vulns(project_id);
		CREATE INDEX IF NOT EXISTS idx_vulns_project_page_url ON vulns(project_id, page_url);
		CREATE INDEX IF NOT EXISTS idx_vulns_text_search ON vulns USING GIN (to_tsvector('english', description || ' ' || steps));
		`,
	}

	for _, migration := range migrations {
		_, err := db.Pool.Exec(ctx, migration)
		if err != nil {
			return err
		}
	}

	return nil
}

// CleanupTestDB truncates all tables for a fresh test state.
// Call this at the start of each integration test.
func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Pool.Exec(ctx, "TRUNCATE TABLE vulns, projects CASCADE")
	require.NoError(t, err)
}

// TeardownTestDB closes the test database connection.
// Safe to call with nil DB (no-op).
func TeardownTestDB(db *DB) {
	if db != nil {
		db.Close()
	}
}
