package model

import (
	"database/sql"
	"time"
)

// ZipRecord represents one archive examined on disk.
// Keysum is a weak content address derived from (filename, size); the
// MD5/SHA checksums are the authoritative integrity identifiers.
type ZipRecord struct {
	Keysum      string // Base-36 digest of (filename, size)
	Filename    string
	Size        int64
	DateCreated time.Time
	MD5Checksum string // Hex MD5 of full content
	SHAChecksum string // Hex SHA-1 of full content
}

// WadRecord represents one container file found inside an archive.
// ZipKeysum names the owning ZipRecord. It is not an enforced foreign
// key — the store performs no referential check; the indexer maintains
// the relationship purely through its insertion order.
type WadRecord struct {
	Keysum      string
	ZipKeysum   string
	Filename    string // Member name within the archive
	Size        int64
	DateCreated time.Time
	MD5Checksum string
	SHAChecksum string
	LumpCount   int64
}

// LevelMapping records one level marker discovered inside a container.
// Zero or more rows exist per WadRecord, with set semantics: the same
// (wad, level) pair is never stored twice.
type LevelMapping struct {
	WadKeysum string
	LevelName string
}

// KnownFile is a reference-lookup row: metadata about an archive cataloged
// out-of-band (e.g. by a mirror crawler). Lookups are purely informational
// and never gate indexing decisions.
type KnownFile struct {
	ID          int64
	Dirname     string // Normalized directory: forward slashes, trailing "/"
	Filename    string
	Title       string
	Author      string
	Description string
	Rating      sql.NullFloat64
}

// IndexRun tracks a single invocation of the indexing pipeline.
type IndexRun struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	Operation    string
	Parameters   string
	Status       string // "success" or "error"
	FilesVisited int64
	WadsIndexed  int64
	Errors       int64
}
