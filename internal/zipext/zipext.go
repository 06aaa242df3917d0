// Package zipext lists zip archive members and materializes selected
// members into a scoped temporary directory.
package zipext

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrArchiveUnreadable indicates an archive that cannot be opened or
// decoded as a zip file.
var ErrArchiveUnreadable = errors.New("archive unreadable")

// Member describes one archive entry without extracting it.
type Member struct {
	Name string
	Size int64 // uncompressed
}

// Extractor performs real zip extraction on the local filesystem.
type Extractor struct{}

// NewExtractor creates a zip extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ListMembers enumerates the regular-file entries of an archive without
// extracting anything.
func (e *Extractor) ListMembers(archivePath string) ([]Member, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, archivePath, err)
	}
	defer r.Close()

	members := make([]Member, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		members = append(members, Member{
			Name: f.Name,
			Size: int64(f.UncompressedSize64),
		})
	}
	return members, nil
}

// Extract materializes the named members under a freshly created
// subdirectory of scratchDir and returns it as a scoped resource.
// On any failure the partially-created directory is removed before the
// error is returned. A member name that is not present in the archive
// is an error.
func (e *Extractor) Extract(archivePath string, names []string, scratchDir string) (*Extraction, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, archivePath, err)
	}
	defer r.Close()

	dir, err := os.MkdirTemp(scratchDir, "wadcat-extract-")
	if err != nil {
		return nil, fmt.Errorf("creating extraction directory: %w", err)
	}

	ext := &Extraction{dir: dir}
	for _, name := range names {
		if err := extractOne(&r.Reader, name, dir); err != nil {
			ext.Close()
			return nil, err
		}
	}

	return ext, nil
}

// extractOne writes a single archive member into dir, preserving any
// relative subdirectories in the member name.
func extractOne(r *zip.Reader, name string, dir string) error {
	f := findMember(r, name)
	if f == nil {
		return fmt.Errorf("member %q not found in archive", name)
	}

	rel, err := sanitizeMemberName(f.Name)
	if err != nil {
		return err
	}

	dest := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating member directory: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: opening member %q: %v", ErrArchiveUnreadable, name, err)
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating extracted file: %w", err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("writing extracted file %q: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing extracted file %q: %w", name, err)
	}
	return nil
}

// findMember locates an entry by exact name, falling back to a
// case-insensitive match (zip archives built on case-insensitive
// filesystems are inconsistent about member case).
func findMember(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	for _, f := range r.File {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// sanitizeMemberName rejects member names that would escape the
// extraction directory (absolute paths or ".." traversal).
func sanitizeMemberName(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("unsafe member path %q", name)
	}
	return clean, nil
}

// Extraction is the scoped result of extracting members from one archive.
// The caller owns the directory and must call Close to release it; Close
// is safe on every exit path including after partial failures.
type Extraction struct {
	dir string
}

// Dir returns the extraction directory path.
func (x *Extraction) Dir() string {
	return x.dir
}

// Open opens an extracted member for reading, by its archive member name.
func (x *Extraction) Open(name string) (io.ReadCloser, error) {
	rel, err := sanitizeMemberName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(x.dir, rel))
	if err != nil {
		return nil, fmt.Errorf("opening extracted member %q: %w", name, err)
	}
	return f, nil
}

// Close deletes the extraction directory and everything in it.
func (x *Extraction) Close() error {
	if x.dir == "" {
		return nil
	}
	dir := x.dir
	x.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing extraction directory: %w", err)
	}
	return nil
}
