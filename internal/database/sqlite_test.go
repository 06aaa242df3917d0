package database_test

import (
	"path/filepath"
	"testing"
	"time"

	"wadcat/internal/catalog"
	"wadcat/internal/database"
	"wadcat/internal/model"
	"wadcat/internal/testutil"
)

// openCatalog opens an existing file-backed catalog and closes it with the test.
func openCatalog(t *testing.T, path string) *database.SQLiteCatalog {
	t.Helper()

	cat, err := database.NewSQLiteCatalog(path)
	if err != nil {
		t.Fatalf("failed to open catalog at %s: %v", path, err)
	}
	t.Cleanup(func() {
		cat.Close()
	})
	return cat
}

func sampleZip(keysum string) *model.ZipRecord {
	return &model.ZipRecord{
		Keysum:      keysum,
		Filename:    "doom.zip",
		Size:        2048,
		DateCreated: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		MD5Checksum: "5d41402abc4b2a76b9719d911017c592",
		SHAChecksum: "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
	}
}

func sampleWad(keysum, zipKeysum string) *model.WadRecord {
	return &model.WadRecord{
		Keysum:      keysum,
		ZipKeysum:   zipKeysum,
		Filename:    "E1M1.WAD",
		Size:        1024,
		DateCreated: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		MD5Checksum: "d41d8cd98f00b204e9800998ecf8427e",
		SHAChecksum: "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		LumpCount:   11,
	}
}

func TestSQLiteCatalog_Zips(t *testing.T) {
	t.Run("inserts and finds a zip record", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		rec := sampleZip("zk1")
		if err := cat.InsertZip(rec); err != nil {
			t.Fatalf("InsertZip() error = %v", err)
		}

		got, err := cat.FindZipByKeysum("zk1")
		if err != nil {
			t.Fatalf("FindZipByKeysum() error = %v", err)
		}
		if got == nil {
			t.Fatal("FindZipByKeysum() = nil, want record")
		}
		if got.Filename != rec.Filename || got.Size != rec.Size || got.MD5Checksum != rec.MD5Checksum {
			t.Errorf("FindZipByKeysum() = %+v, want %+v", got, rec)
		}
	})

	t.Run("returns nil for an unknown keysum", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		got, err := cat.FindZipByKeysum("missing")
		if err != nil {
			t.Fatalf("FindZipByKeysum() error = %v", err)
		}
		if got != nil {
			t.Errorf("FindZipByKeysum() = %+v, want nil", got)
		}
	})

	t.Run("duplicate keysum is a conflict", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		if err := cat.InsertZip(sampleZip("zk1")); err != nil {
			t.Fatalf("InsertZip() error = %v", err)
		}

		err := cat.InsertZip(sampleZip("zk1"))
		if err == nil {
			t.Fatal("InsertZip() succeeded on duplicate keysum")
		}
		if !catalog.IsConflict(err) {
			t.Errorf("InsertZip() error = %v, want conflict", err)
		}
	})
}

func TestSQLiteCatalog_Wads(t *testing.T) {
	t.Run("inserts and finds wads by zip keysum", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		if err := cat.InsertWad(sampleWad("wk1", "zk1")); err != nil {
			t.Fatalf("InsertWad() error = %v", err)
		}
		other := sampleWad("wk2", "zk1")
		other.Filename = "MAP01.WAD"
		if err := cat.InsertWad(other); err != nil {
			t.Fatalf("InsertWad() error = %v", err)
		}

		wads, err := cat.FindWadsByZipKeysum("zk1")
		if err != nil {
			t.Fatalf("FindWadsByZipKeysum() error = %v", err)
		}
		if len(wads) != 2 {
			t.Fatalf("FindWadsByZipKeysum() returned %d rows, want 2", len(wads))
		}
		if wads[0].Filename != "E1M1.WAD" || wads[1].Filename != "MAP01.WAD" {
			t.Errorf("wads not ordered by filename: %s, %s", wads[0].Filename, wads[1].Filename)
		}
	})

	t.Run("wad insert does not require the owning zip row", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		// zip_keysum is not an enforced foreign key.
		if err := cat.InsertWad(sampleWad("wk1", "no-such-zip")); err != nil {
			t.Fatalf("InsertWad() error = %v", err)
		}

		got, err := cat.FindWadByKeysum("wk1")
		if err != nil {
			t.Fatalf("FindWadByKeysum() error = %v", err)
		}
		if got == nil || got.ZipKeysum != "no-such-zip" {
			t.Errorf("FindWadByKeysum() = %+v", got)
		}
	})

	t.Run("duplicate wad keysum is a conflict", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		if err := cat.InsertWad(sampleWad("wk1", "zk1")); err != nil {
			t.Fatalf("InsertWad() error = %v", err)
		}
		err := cat.InsertWad(sampleWad("wk1", "zk2"))
		if !catalog.IsConflict(err) {
			t.Errorf("InsertWad() error = %v, want conflict", err)
		}
	})
}

func TestSQLiteCatalog_LevelMappings(t *testing.T) {
	t.Run("stores levels with set semantics", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		for _, name := range []string{"E1M1", "MAP01", "E1M1"} {
			if err := cat.InsertLevelMapping("wk1", name); err != nil {
				t.Fatalf("InsertLevelMapping(%s) error = %v", name, err)
			}
		}

		levels, err := cat.FindLevelsForWad("wk1")
		if err != nil {
			t.Fatalf("FindLevelsForWad() error = %v", err)
		}
		if len(levels) != 2 {
			t.Fatalf("FindLevelsForWad() = %v, want 2 distinct levels", levels)
		}
		if levels[0] != "E1M1" || levels[1] != "MAP01" {
			t.Errorf("FindLevelsForWad() = %v", levels)
		}
	})

	t.Run("same level may map to different wads", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		if err := cat.InsertLevelMapping("wk1", "MAP01"); err != nil {
			t.Fatalf("InsertLevelMapping() error = %v", err)
		}
		if err := cat.InsertLevelMapping("wk2", "MAP01"); err != nil {
			t.Fatalf("InsertLevelMapping() error = %v", err)
		}

		for _, wk := range []string{"wk1", "wk2"} {
			levels, err := cat.FindLevelsForWad(wk)
			if err != nil {
				t.Fatalf("FindLevelsForWad(%s) error = %v", wk, err)
			}
			if len(levels) != 1 || levels[0] != "MAP01" {
				t.Errorf("FindLevelsForWad(%s) = %v", wk, levels)
			}
		}
	})
}

func TestSQLiteCatalog_IndexRuns(t *testing.T) {
	t.Run("creates, finishes and lists runs", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		run, err := cat.CreateIndexRun("Index", "/data/wads")
		if err != nil {
			t.Fatalf("CreateIndexRun() error = %v", err)
		}
		if run.ID == 0 {
			t.Error("CreateIndexRun() returned zero ID")
		}

		if err := cat.FinishIndexRun(run.ID, "success", 10, 4, 1); err != nil {
			t.Fatalf("FinishIndexRun() error = %v", err)
		}

		runs, err := cat.ListIndexRuns(10)
		if err != nil {
			t.Fatalf("ListIndexRuns() error = %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("ListIndexRuns() returned %d runs, want 1", len(runs))
		}
		got := runs[0]
		if got.Status != "success" || got.FilesVisited != 10 || got.WadsIndexed != 4 || got.Errors != 1 {
			t.Errorf("run = %+v", got)
		}
		if !got.FinishedAt.Valid {
			t.Error("FinishedAt not set")
		}
	})

	t.Run("lists newest first and honors the limit", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		for i := 0; i < 3; i++ {
			if _, err := cat.CreateIndexRun("Index", "/data/wads"); err != nil {
				t.Fatalf("CreateIndexRun() error = %v", err)
			}
		}

		runs, err := cat.ListIndexRuns(2)
		if err != nil {
			t.Fatalf("ListIndexRuns() error = %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("ListIndexRuns(2) returned %d runs", len(runs))
		}
		if runs[0].ID <= runs[1].ID {
			t.Errorf("runs not newest first: %d then %d", runs[0].ID, runs[1].ID)
		}
	})

	t.Run("MaxIndexRunID is zero for an empty catalog", func(t *testing.T) {
		cat := testutil.NewTestCatalog(t)

		id, err := cat.MaxIndexRunID()
		if err != nil {
			t.Fatalf("MaxIndexRunID() error = %v", err)
		}
		if id != 0 {
			t.Errorf("MaxIndexRunID() = %d, want 0", id)
		}

		if _, err := cat.CreateIndexRun("Index", ""); err != nil {
			t.Fatalf("CreateIndexRun() error = %v", err)
		}
		id, err = cat.MaxIndexRunID()
		if err != nil {
			t.Fatalf("MaxIndexRunID() error = %v", err)
		}
		if id != 1 {
			t.Errorf("MaxIndexRunID() = %d, want 1", id)
		}
	})
}

func TestSQLiteCatalog_BackupTo(t *testing.T) {
	cat := testutil.NewTestCatalog(t)

	if err := cat.InsertZip(sampleZip("zk1")); err != nil {
		t.Fatalf("InsertZip() error = %v", err)
	}

	dest := filepath.Join(t.TempDir(), "snapshot.db")
	if err := cat.BackupTo(dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	// The copy is a complete catalog in its own right.
	copyCat := openCatalog(t, dest)
	got, err := copyCat.FindZipByKeysum("zk1")
	if err != nil {
		t.Fatalf("FindZipByKeysum() on copy error = %v", err)
	}
	if got == nil || got.Filename != "doom.zip" {
		t.Errorf("copy missing zip record: %+v", got)
	}
}
