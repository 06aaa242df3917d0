package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// WriteZip creates a zip archive at dir/name containing the given members.
// Member names may include forward-slash paths. Returns the archive path.
func WriteZip(t *testing.T, dir, name string, members map[string][]byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for memberName, data := range members {
		w, err := zw.Create(memberName)
		if err != nil {
			t.Fatalf("failed to add member %s: %v", memberName, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("failed to write member %s: %v", memberName, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finalize archive %s: %v", path, err)
	}

	return path
}
