package testutil

import (
	"testing"

	"wadcat/internal/database"
)

// NewTestCatalog creates an in-memory SQLite catalog with schema applied.
// The catalog is automatically closed when the test completes.
func NewTestCatalog(t *testing.T) *database.SQLiteCatalog {
	t.Helper()

	cat, err := database.NewSQLiteCatalog(":memory:")
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}

	if err := cat.MigrateUp(); err != nil {
		cat.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		cat.Close()
	})

	return cat
}
