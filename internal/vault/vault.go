// Package vault stores versioned snapshots of the catalog database.
package vault

import "io"

// Vault is a storage backend for catalog snapshots. Operations stream
// through io.Reader/io.Writer so large catalogs never need to fit in
// memory.
type Vault interface {
	// PutSnapshot stores a named snapshot. size is the number of bytes
	// that will be read from r. version is stored alongside the snapshot
	// for consistency checks; storing a snapshot replaces any previous
	// one under the same name.
	PutSnapshot(name string, r io.Reader, size int64, version int64) error

	// GetSnapshot retrieves a named snapshot and writes it to w.
	GetSnapshot(name string, w io.Writer) error

	// SnapshotVersion returns the version of a named snapshot.
	// Returns 0 if no snapshot has been stored under this name.
	SnapshotVersion(name string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
