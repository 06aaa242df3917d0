package catalog

import (
	"errors"
	"fmt"

	"wadcat/internal/model"
)

// Store is the destination for catalog records. Each insert reports
// success or a *StoreError distinguishing key conflicts from I/O
// failures; the indexer treats every insert attempt independently.
//
// The store performs no referential check between wads and zipfiles.
// A WadRecord's ZipKeysum naming a real ZipRecord is an invariant of the
// indexer's insertion order, not of the schema.
type Store interface {
	// InsertZip records one examined archive.
	InsertZip(rec *model.ZipRecord) error

	// InsertWad records one container found inside an archive.
	InsertWad(rec *model.WadRecord) error

	// InsertLevelMapping records one level discovered inside a container.
	// Re-inserting an existing (wad, level) pair is a no-op, not an error.
	InsertLevelMapping(wadKeysum, levelName string) error

	// Close closes the store connection.
	Close() error
}

// StoreErrorKind classifies insert failures.
type StoreErrorKind int

const (
	// StoreConflict is a primary-key or uniqueness violation: the record
	// (or a keysum collision for it) is already cataloged.
	StoreConflict StoreErrorKind = iota
	// StoreIO is any other store failure.
	StoreIO
)

// StoreError is a structured insertion error from a Store implementation.
type StoreError struct {
	Op    string // e.g. "insert zip"
	Table string
	Kind  StoreErrorKind
	Err   error
}

func (e *StoreError) Error() string {
	kind := "io failure"
	if e.Kind == StoreConflict {
		kind = "conflict"
	}
	return fmt.Sprintf("%s into %s: %s: %v", e.Op, e.Table, kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsConflict reports whether err is a store key conflict.
func IsConflict(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == StoreConflict
}
