package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alphapocket/pocket-backend/internal/database"
)

// SetupTestDB creates a throwaway SQLite database with every migration applied,
// including the seeded positions. The database is removed when the test completes.
//
// A file in t.TempDir() is used instead of ":memory:" because each pooled
// connection to ":memory:" would see its own empty database.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "pocket_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if _, err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// SetupEmptyTestDB is SetupTestDB without the seeded positions.
func SetupEmptyTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := SetupTestDB(t)
	ClearPositions(t, db)
	return db
}

// ClearPositions deletes every row from the position table.
func ClearPositions(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec("DELETE FROM position"); err != nil {
		t.Fatalf("Failed to clear positions: %v", err)
	}
}
