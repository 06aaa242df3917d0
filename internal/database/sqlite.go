// Package database implements the catalog's destination store on SQLite.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"wadcat/internal/catalog"
	"wadcat/internal/database/migrations"
	"wadcat/internal/model"
)

// SQLiteCatalog implements the catalog.Store interface using SQLite.
type SQLiteCatalog struct {
	db   *sql.DB
	path string
}

// NewSQLiteCatalog opens a catalog database connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteCatalog{
		db:   db,
		path: path,
	}, nil
}

// OpenConnection opens and configures a SQLite connection.
// Exported for tools and tests that need a properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign key enforcement is ON even though the catalog schema
	// declares none between wads and zipfiles; that relationship is a
	// logical invariant of the indexer's insertion order.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// An in-memory database exists per connection; keep the pool at one
	// so every statement sees the same database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// Insert operations

func (s *SQLiteCatalog) InsertZip(rec *model.ZipRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO zipfiles (keysum, date_created, filename, size, md5_checksum, sha_checksum)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Keysum, rec.DateCreated, rec.Filename, rec.Size, rec.MD5Checksum, rec.SHAChecksum,
	)
	if err != nil {
		return storeError("insert zip", "zipfiles", err)
	}
	return nil
}

func (s *SQLiteCatalog) InsertWad(rec *model.WadRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO wads (keysum, zip_keysum, date_created, filename, size, md5_checksum, sha_checksum, lump_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Keysum, rec.ZipKeysum, rec.DateCreated, rec.Filename, rec.Size,
		rec.MD5Checksum, rec.SHAChecksum, rec.LumpCount,
	)
	if err != nil {
		return storeError("insert wad", "wads", err)
	}
	return nil
}

// InsertLevelMapping records one (wad, level) pair. Set semantics: a
// pair that already exists is silently left alone.
func (s *SQLiteCatalog) InsertLevelMapping(wadKeysum, levelName string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO levels_to_wads (wad_keysum, level_name) VALUES (?, ?)`,
		wadKeysum, levelName,
	)
	if err != nil {
		return storeError("insert level mapping", "levels_to_wads", err)
	}
	return nil
}

// Query operations

func (s *SQLiteCatalog) FindZipByKeysum(keysum string) (*model.ZipRecord, error) {
	var rec model.ZipRecord
	err := s.db.QueryRow(
		`SELECT keysum, date_created, filename, size, md5_checksum, sha_checksum
		 FROM zipfiles WHERE keysum = ?`, keysum,
	).Scan(&rec.Keysum, &rec.DateCreated, &rec.Filename, &rec.Size, &rec.MD5Checksum, &rec.SHAChecksum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding zip by keysum: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteCatalog) FindWadByKeysum(keysum string) (*model.WadRecord, error) {
	var rec model.WadRecord
	err := s.db.QueryRow(
		`SELECT keysum, zip_keysum, date_created, filename, size, md5_checksum, sha_checksum, lump_count
		 FROM wads WHERE keysum = ?`, keysum,
	).Scan(&rec.Keysum, &rec.ZipKeysum, &rec.DateCreated, &rec.Filename, &rec.Size,
		&rec.MD5Checksum, &rec.SHAChecksum, &rec.LumpCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding wad by keysum: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteCatalog) FindWadsByZipKeysum(zipKeysum string) ([]*model.WadRecord, error) {
	rows, err := s.db.Query(
		`SELECT keysum, zip_keysum, date_created, filename, size, md5_checksum, sha_checksum, lump_count
		 FROM wads WHERE zip_keysum = ? ORDER BY filename`, zipKeysum,
	)
	if err != nil {
		return nil, fmt.Errorf("finding wads by zip keysum: %w", err)
	}
	defer rows.Close()

	var recs []*model.WadRecord
	for rows.Next() {
		var rec model.WadRecord
		if err := rows.Scan(&rec.Keysum, &rec.ZipKeysum, &rec.DateCreated, &rec.Filename, &rec.Size,
			&rec.MD5Checksum, &rec.SHAChecksum, &rec.LumpCount); err != nil {
			return nil, fmt.Errorf("scanning wad row: %w", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading wad rows: %w", err)
	}
	return recs, nil
}

func (s *SQLiteCatalog) FindLevelsForWad(wadKeysum string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT level_name FROM levels_to_wads WHERE wad_keysum = ? ORDER BY level_name`, wadKeysum,
	)
	if err != nil {
		return nil, fmt.Errorf("finding levels for wad: %w", err)
	}
	defer rows.Close()

	var levels []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning level row: %w", err)
		}
		levels = append(levels, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading level rows: %w", err)
	}
	return levels, nil
}

// FindKnownFile returns reference metadata for a (dirname, filename)
// pair, or nil if nothing is known about it.
func (s *SQLiteCatalog) FindKnownFile(dirname, filename string) (*model.KnownFile, error) {
	var kf model.KnownFile
	err := s.db.QueryRow(
		`SELECT id, dirname, filename, title, author, description, rating
		 FROM known_files WHERE dirname = ? AND filename = ?`, dirname, filename,
	).Scan(&kf.ID, &kf.Dirname, &kf.Filename, &kf.Title, &kf.Author, &kf.Description, &kf.Rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding known file: %w", err)
	}
	return &kf, nil
}

// Run tracking

func (s *SQLiteCatalog) CreateIndexRun(operation, parameters string) (*model.IndexRun, error) {
	startedAt := time.Now()
	res, err := s.db.Exec(
		`INSERT INTO index_runs (started_at, operation, parameters) VALUES (?, ?, ?)`,
		startedAt, operation, parameters,
	)
	if err != nil {
		return nil, fmt.Errorf("creating index run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading index run id: %w", err)
	}
	return &model.IndexRun{
		ID:         id,
		StartedAt:  startedAt,
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
	}, nil
}

func (s *SQLiteCatalog) FinishIndexRun(id int64, status string, filesVisited, wadsIndexed, errCount int64) error {
	_, err := s.db.Exec(
		`UPDATE index_runs
		 SET finished_at = ?, status = ?, files_visited = ?, wads_indexed = ?, errors = ?
		 WHERE id = ?`,
		time.Now(), status, filesVisited, wadsIndexed, errCount, id,
	)
	if err != nil {
		return fmt.Errorf("finishing index run: %w", err)
	}
	return nil
}

func (s *SQLiteCatalog) ListIndexRuns(limit int) ([]*model.IndexRun, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, operation, parameters, status, files_visited, wads_indexed, errors
		 FROM index_runs ORDER BY id DESC LIMIT ?`, int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("listing index runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.IndexRun
	for rows.Next() {
		var run model.IndexRun
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Operation, &run.Parameters,
			&run.Status, &run.FilesVisited, &run.WadsIndexed, &run.Errors); err != nil {
			return nil, fmt.Errorf("scanning index run row: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading index run rows: %w", err)
	}
	return runs, nil
}

// MaxIndexRunID returns the highest run ID, 0 for an empty catalog.
// Used as the version marker for catalog snapshots.
func (s *SQLiteCatalog) MaxIndexRunID() (int64, error) {
	var id int64
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(id), 0) FROM index_runs`).Scan(&id); err != nil {
		return 0, fmt.Errorf("getting max index run ID: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteCatalog) Path() string {
	return s.path
}

// CheckSchema verifies the catalog schema is present and up-to-date.
func (s *SQLiteCatalog) CheckSchema() error {
	return migrations.CheckSchemaStatus(s.db)
}

// MigrateUp applies pending schema migrations.
func (s *SQLiteCatalog) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the catalog at destPath using VACUUM INTO.
func (s *SQLiteCatalog) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteCatalog) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// storeError wraps a driver error as a structured catalog.StoreError,
// classifying uniqueness violations as conflicts.
func storeError(op, table string, err error) error {
	kind := catalog.StoreIO
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		kind = catalog.StoreConflict
	}
	return &catalog.StoreError{Op: op, Table: table, Kind: kind, Err: err}
}

// Compile-time check that SQLiteCatalog implements catalog.Store
var _ catalog.Store = (*SQLiteCatalog)(nil)
