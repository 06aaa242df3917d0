package catalog

import (
	"io"

	"wadcat/internal/zipext"
)

// Extractor lists and materializes archive members.
type Extractor interface {
	// ListMembers enumerates entry names and sizes without extracting.
	ListMembers(archivePath string) ([]zipext.Member, error)

	// Extract materializes the named members under a fresh subdirectory
	// of scratchDir. The returned Extraction is a scoped resource the
	// caller must Close once indexing of its members is complete.
	Extract(archivePath string, names []string, scratchDir string) (Extraction, error)
}

// Extraction is the scoped result of one archive's extraction.
type Extraction interface {
	// Open opens an extracted member for reading by its member name.
	Open(name string) (io.ReadCloser, error)

	// Close releases the extraction directory and its contents.
	Close() error
}

// ZipExtractor adapts zipext to the Extractor interface.
type ZipExtractor struct {
	ext *zipext.Extractor
}

// NewZipExtractor creates an Extractor backed by real zip extraction.
func NewZipExtractor() *ZipExtractor {
	return &ZipExtractor{ext: zipext.NewExtractor()}
}

func (z *ZipExtractor) ListMembers(archivePath string) ([]zipext.Member, error) {
	return z.ext.ListMembers(archivePath)
}

func (z *ZipExtractor) Extract(archivePath string, names []string, scratchDir string) (Extraction, error) {
	x, err := z.ext.Extract(archivePath, names, scratchDir)
	if err != nil {
		return nil, err
	}
	return x, nil
}

// Compile-time check that ZipExtractor implements Extractor
var _ Extractor = (*ZipExtractor)(nil)
