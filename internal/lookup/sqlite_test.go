package lookup_test

import (
	"path/filepath"
	"testing"

	"wadcat/internal/config"
	"wadcat/internal/database"
	"wadcat/internal/lookup"
)

// newReferenceDB creates a file-backed database with the schema applied
// and one known_files row.
func newReferenceDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "reference.db")
	cat, err := database.NewSQLiteCatalog(path)
	if err != nil {
		t.Fatalf("failed to open reference db: %v", err)
	}
	defer cat.Close()
	if err := cat.MigrateUp(); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	db, err := database.OpenConnection(path)
	if err != nil {
		t.Fatalf("failed to reopen reference db: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(
		`INSERT INTO known_files (dirname, filename, title, author, description, rating)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"levels/doom/", "entryway.zip", "Entryway Remix", "someone", "a single map", 4.5,
	)
	if err != nil {
		t.Fatalf("failed to seed known_files: %v", err)
	}

	return path
}

func TestSQLiteLookup_FindByPath(t *testing.T) {
	path := newReferenceDB(t)

	l, err := lookup.NewSQLiteLookup(path)
	if err != nil {
		t.Fatalf("NewSQLiteLookup() error = %v", err)
	}
	defer l.Close()

	t.Run("finds a known file", func(t *testing.T) {
		kf, err := l.FindByPath("levels/doom/", "entryway.zip")
		if err != nil {
			t.Fatalf("FindByPath() error = %v", err)
		}
		if kf == nil {
			t.Fatal("FindByPath() = nil, want row")
		}
		if kf.Title != "Entryway Remix" || kf.Author != "someone" {
			t.Errorf("FindByPath() = %+v", kf)
		}
		if !kf.Rating.Valid || kf.Rating.Float64 != 4.5 {
			t.Errorf("Rating = %+v, want 4.5", kf.Rating)
		}
	})

	t.Run("returns nil for an unknown file", func(t *testing.T) {
		kf, err := l.FindByPath("levels/doom/", "unknown.zip")
		if err != nil {
			t.Fatalf("FindByPath() error = %v", err)
		}
		if kf != nil {
			t.Errorf("FindByPath() = %+v, want nil", kf)
		}
	})

	t.Run("dirname must match exactly", func(t *testing.T) {
		kf, err := l.FindByPath("levels/doom", "entryway.zip")
		if err != nil {
			t.Fatalf("FindByPath() error = %v", err)
		}
		if kf != nil {
			t.Errorf("FindByPath() matched without the trailing slash: %+v", kf)
		}
	})
}

func TestNewLookupFromConfig(t *testing.T) {
	t.Run("none yields a nop lookup", func(t *testing.T) {
		l, err := lookup.NewLookupFromConfig(config.LookupConfig{Type: "none"})
		if err != nil {
			t.Fatalf("NewLookupFromConfig() error = %v", err)
		}
		kf, err := l.FindByPath("any/", "thing.zip")
		if err != nil || kf != nil {
			t.Errorf("nop lookup returned (%+v, %v)", kf, err)
		}
	})

	t.Run("empty type yields a nop lookup", func(t *testing.T) {
		if _, err := lookup.NewLookupFromConfig(config.LookupConfig{}); err != nil {
			t.Errorf("NewLookupFromConfig() error = %v", err)
		}
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		if _, err := lookup.NewLookupFromConfig(config.LookupConfig{Type: "sqlite"}); err == nil {
			t.Error("NewLookupFromConfig() accepted sqlite lookup without a path")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := lookup.NewLookupFromConfig(config.LookupConfig{Type: "http"}); err == nil {
			t.Error("NewLookupFromConfig() accepted unknown lookup type")
		}
	})
}
