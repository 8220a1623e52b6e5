package driven

import (
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"
)

// setupTestDB creates a temporary BoltDB database for testing.
func setupTestDB(t *testing.T) (*bbolt.DB, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup
}
