// Package lookup provides reference-lookup backends: read-only sources
// of previously known archive metadata consulted by the indexer for
// annotation only.
package lookup

import (
	"database/sql"
	"errors"
	"fmt"

	"wadcat/internal/catalog"
	"wadcat/internal/database"
	"wadcat/internal/model"
)

// SQLiteLookup reads the known_files table of a catalog database,
// typically one populated out-of-band by a mirror crawler.
type SQLiteLookup struct {
	db   *sql.DB
	path string
}

// NewSQLiteLookup opens a read-only lookup over the database at path.
func NewSQLiteLookup(path string) (*SQLiteLookup, error) {
	db, err := database.OpenConnection(path)
	if err != nil {
		return nil, fmt.Errorf("opening lookup database: %w", err)
	}
	return &SQLiteLookup{db: db, path: path}, nil
}

// FindByPath returns the known metadata for a (dirname, filename) pair,
// or (nil, nil) when nothing is known about it.
func (l *SQLiteLookup) FindByPath(dirname, filename string) (*model.KnownFile, error) {
	var kf model.KnownFile
	err := l.db.QueryRow(
		`SELECT id, dirname, filename, title, author, description, rating
		 FROM known_files WHERE dirname = ? AND filename = ?`, dirname, filename,
	).Scan(&kf.ID, &kf.Dirname, &kf.Filename, &kf.Title, &kf.Author, &kf.Description, &kf.Rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("querying known files: %w", err)
	}
	return &kf, nil
}

// Close closes the lookup database connection.
func (l *SQLiteLookup) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteLookup implements catalog.Lookup
var _ catalog.Lookup = (*SQLiteLookup)(nil)
