// Package testing provides testing utilities and helpers for the investai project.
package testing

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3" // cgo driver for in-memory repository tests
	"github.com/stretchr/testify/require"

	"github.com/aristath/investai/internal/database"
)

// NewTestDB creates a file-backed SQLite database (modernc driver) in a
// per-test temporary directory with the full schema applied.
// Returns the database instance and a cleanup function that closes the connection.
// The cleanup function is idempotent and can be called multiple times safely.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "investai_test_*")
	require.NoError(t, err)

	db, err := database.New(database.Config{
		URL:     filepath.Join(dir, name+".db"),
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.RemoveAll(dir)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Logf("Warning: Failed to remove temporary directory %s: %v", dir, err)
		}
	}
}

// NewMemoryDB opens an in-memory SQLite database through mattn/go-sqlite3
// and applies the SQLite schema. The pool is pinned to a single connection
// because every :memory: connection is a separate database.
func NewMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := database.SchemaSQL(database.DialectSQLite)
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}
