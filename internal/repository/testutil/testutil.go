package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"nuance/backend/internal/db"
	"nuance/backend/internal/snowflake"
)

// NewTestDB opens a fresh migrated sqlite database in a temp directory.
// The database is closed when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if err := snowflake.Init(1); err != nil {
		t.Fatalf("init snowflake: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}
