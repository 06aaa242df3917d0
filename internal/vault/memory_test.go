package vault_test

import (
	"bytes"
	"strings"
	"testing"

	"wadcat/internal/vault"
)

func TestMemoryVault(t *testing.T) {
	t.Run("stores and retrieves a snapshot", func(t *testing.T) {
		v := vault.NewMemoryVault("test")

		data := []byte("catalog contents")
		if err := v.PutSnapshot("catalog.db", bytes.NewReader(data), int64(len(data)), 3); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}

		var out bytes.Buffer
		if err := v.GetSnapshot("catalog.db", &out); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if !bytes.Equal(out.Bytes(), data) {
			t.Errorf("GetSnapshot() = %q, want %q", out.Bytes(), data)
		}

		version, err := v.SnapshotVersion("catalog.db")
		if err != nil {
			t.Fatalf("SnapshotVersion() error = %v", err)
		}
		if version != 3 {
			t.Errorf("SnapshotVersion() = %d, want 3", version)
		}
	})

	t.Run("replaces an existing snapshot", func(t *testing.T) {
		v := vault.NewMemoryVault("test")

		first := []byte("old")
		second := []byte("newer contents")
		if err := v.PutSnapshot("catalog.db", bytes.NewReader(first), int64(len(first)), 1); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		if err := v.PutSnapshot("catalog.db", bytes.NewReader(second), int64(len(second)), 2); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}

		var out bytes.Buffer
		if err := v.GetSnapshot("catalog.db", &out); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if !bytes.Equal(out.Bytes(), second) {
			t.Errorf("GetSnapshot() = %q, want %q", out.Bytes(), second)
		}

		version, _ := v.SnapshotVersion("catalog.db")
		if version != 2 {
			t.Errorf("SnapshotVersion() = %d, want 2", version)
		}
	})

	t.Run("rejects a size mismatch", func(t *testing.T) {
		v := vault.NewMemoryVault("test")

		err := v.PutSnapshot("catalog.db", strings.NewReader("short"), 100, 1)
		if err == nil {
			t.Error("PutSnapshot() accepted mismatched size")
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		v := vault.NewMemoryVault("test")

		var out bytes.Buffer
		if err := v.GetSnapshot("nope", &out); err == nil {
			t.Error("GetSnapshot() succeeded for a missing snapshot")
		}

		version, err := v.SnapshotVersion("nope")
		if err != nil {
			t.Fatalf("SnapshotVersion() error = %v", err)
		}
		if version != 0 {
			t.Errorf("SnapshotVersion() = %d, want 0", version)
		}
	})
}
