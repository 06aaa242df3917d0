package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"wadcat/internal/catalog"
	"wadcat/internal/config"
	"wadcat/internal/database"
	"wadcat/internal/encryption"
	"wadcat/internal/fs"
	"wadcat/internal/lookup"
	"wadcat/internal/model"
	"wadcat/internal/vault"

	"github.com/google/uuid"
)

// snapshotName is the vault name the catalog snapshot is stored under.
const snapshotName = "catalog.db"

// App is the application layer between the CLI and the catalog Service.
// It constructs all dependencies from config, exposes high-level
// operations that accept raw string paths, and manages the DB lifecycle
// on Close.
type App struct {
	cfg       *config.Config
	db        *database.SQLiteCatalog
	lookup    catalog.Lookup
	fsmgr     catalog.FilesystemManager
	encryptor encryption.Encryptor
	service   *catalog.Service
	op        *Operation
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Index", "Snapshot").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	fsmgr := fs.NewOSFilesystemManager()

	db, err := database.NewCatalogFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	if err := db.CheckSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog schema check failed: %w", err)
	}

	lk, err := lookup.NewLookupFromConfig(cfg.Lookup)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening reference lookup: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		closeLookup(lk)
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	if err := os.MkdirAll(cfg.ScratchDir, 0755); err != nil {
		db.Close()
		closeLookup(lk)
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}

	runID := uuid.New().String()[:8]
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		db.Close()
		closeLookup(lk)
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := catalog.NewService(
		db, lk, catalog.NewZipExtractor(), fsmgr,
		&slogAdapter{l: logger}, catalog.RealClock{},
		cfg.ScratchDir, cfg.MaxFiles,
	)

	return &App{
		cfg:       cfg,
		db:        db,
		lookup:    lk,
		fsmgr:     fsmgr,
		encryptor: enc,
		service:   svc,
		op:        NewOperation(operation, ""),
		logFile:   logFile,
	}, nil
}

// InitCatalog creates or migrates the catalog database described by cfg.
// This is the one path that tolerates a missing schema.
func InitCatalog(cfg *config.Config) error {
	db, err := database.NewCatalogFromConfig(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		return fmt.Errorf("migrating catalog schema: %w", err)
	}
	return nil
}

// Index runs the indexing pipeline over the tree rooted at rawRoot,
// recording the run in the catalog's history.
func (a *App) Index(rawRoot string) (*catalog.RunStatistics, error) {
	a.op.Parameters = rawRoot
	run, err := a.db.CreateIndexRun(a.op.Operation, a.op.Parameters)
	if err != nil {
		return nil, fmt.Errorf("recording index run: %w", err)
	}
	a.op.ID = run.ID

	stats, err := a.service.Index(rawRoot)
	status := "success"
	if err != nil || stats.Errors > 0 {
		status = "error"
	}
	a.op.Status = status

	if ferr := a.db.FinishIndexRun(run.ID, status, stats.FilesVisited, stats.WadsIndexed, stats.Errors); ferr != nil {
		if err == nil {
			err = fmt.Errorf("finishing index run: %w", ferr)
		}
	}

	return stats, err
}

// History returns the most recent index runs.
func (a *App) History(limit int) ([]*model.IndexRun, error) {
	return a.db.ListIndexRuns(limit)
}

// Snapshot copies the catalog database into the configured vault,
// versioned by the highest run ID. When an encryptor is configured the
// snapshot is encrypted with the public key before upload.
func (a *App) Snapshot() error {
	v, err := vault.NewVaultFromConfig(a.cfg.Vault)
	if err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}
	if err := v.ValidateSetup(); err != nil {
		return fmt.Errorf("validating vault: %w", err)
	}

	version, err := a.db.MaxIndexRunID()
	if err != nil {
		return fmt.Errorf("determining snapshot version: %w", err)
	}

	tmpFile, err := os.CreateTemp("", "wadcat-snapshot-*.db")
	if err != nil {
		return fmt.Errorf("creating temp file for snapshot: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	os.Remove(tmpPath) // VACUUM INTO refuses to overwrite
	defer os.Remove(tmpPath)

	if err := a.db.BackupTo(tmpPath); err != nil {
		return fmt.Errorf("snapshotting catalog: %w", err)
	}

	if a.encryptor != nil {
		encPath := tmpPath + ".enc"
		defer os.Remove(encPath)
		if err := a.encryptFile(tmpPath, encPath); err != nil {
			return err
		}
		tmpPath = encPath
	}

	return a.uploadSnapshot(v, tmpPath, version)
}

// RestoreSnapshot fetches the latest snapshot from the vault and writes
// it to destPath, returning the version the snapshot was stored under.
// passphrase is required only when snapshots are encrypted.
func (a *App) RestoreSnapshot(destPath, passphrase string) (int64, error) {
	v, err := vault.NewVaultFromConfig(a.cfg.Vault)
	if err != nil {
		return 0, fmt.Errorf("creating vault: %w", err)
	}

	version, err := v.SnapshotVersion(snapshotName)
	if err != nil {
		return 0, fmt.Errorf("reading snapshot version: %w", err)
	}

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, fmt.Errorf("creating restore target: %w", err)
	}
	defer out.Close()

	if a.encryptor == nil {
		if err := v.GetSnapshot(snapshotName, out); err != nil {
			return 0, fmt.Errorf("fetching snapshot: %w", err)
		}
		return version, nil
	}

	ctx, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking private key: %w", err)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(v.GetSnapshot(snapshotName, pw))
	}()

	if err := ctx.Decrypt(pr, out); err != nil {
		return 0, fmt.Errorf("decrypting snapshot: %w", err)
	}
	return version, nil
}

// SetupKeys generates the snapshot encryption key pair.
func (a *App) SetupKeys(passphrase string) error {
	if a.encryptor == nil {
		return fmt.Errorf("encryption is not configured (set encryption.type in config)")
	}
	if a.encryptor.IsConfigured() {
		return fmt.Errorf("key files already exist")
	}
	return a.encryptor.Setup(passphrase)
}

// encryptFile encrypts srcPath into destPath with the configured public key.
func (a *App) encryptFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening snapshot for encryption: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}

	if err := a.encryptor.Encrypt(src, dest); err != nil {
		dest.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	return dest.Close()
}

// uploadSnapshot opens the snapshot file and stores it in the vault.
func (a *App) uploadSnapshot(v vault.Vault, path string, version int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	if err := v.PutSnapshot(snapshotName, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot to vault: %w", err)
	}
	return nil
}

// Close closes all resources held by the App.
func (a *App) Close() error {
	var firstErr error

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing catalog: %w", err)
	}

	closeLookup(a.lookup)

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// closeLookup closes lookup backends that hold a connection.
func closeLookup(lk catalog.Lookup) {
	if c, ok := lk.(io.Closer); ok {
		c.Close()
	}
}

// Elapsed formats a duration the way the CLI presents run times.
func Elapsed(d time.Duration) string {
	return d.Truncate(time.Millisecond).String()
}
