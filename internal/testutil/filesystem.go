package testutil

import (
	"errors"
	"io"
	iofs "io/fs"

	"wadcat/internal/catalog"
	"wadcat/internal/fs"
)

// ErrOpenRefused is the error FaultyFilesystem injects from Open.
var ErrOpenRefused = errors.New("open refused")

// FaultyFilesystem wraps the real filesystem manager and fails Open for
// paths accepted by shouldFail. Everything else passes through, so file
// discovery and stat behave normally.
type FaultyFilesystem struct {
	inner      catalog.FilesystemManager
	shouldFail func(path string) bool
}

// NewFaultyFilesystem creates a FaultyFilesystem over the OS filesystem.
func NewFaultyFilesystem(shouldFail func(path string) bool) *FaultyFilesystem {
	return &FaultyFilesystem{
		inner:      fs.NewOSFilesystemManager(),
		shouldFail: shouldFail,
	}
}

var _ catalog.FilesystemManager = (*FaultyFilesystem)(nil)

func (f *FaultyFilesystem) Resolve(rawPath string) (*catalog.Path, error) {
	return f.inner.Resolve(rawPath)
}

func (f *FaultyFilesystem) Open(path *catalog.Path) (io.ReadCloser, error) {
	if f.shouldFail(path.String()) {
		return nil, ErrOpenRefused
	}
	return f.inner.Open(path)
}

func (f *FaultyFilesystem) Stat(path *catalog.Path) (iofs.FileInfo, error) {
	return f.inner.Stat(path)
}

func (f *FaultyFilesystem) FindFiles(path *catalog.Path, recursive bool) ([]*catalog.Path, error) {
	return f.inner.FindFiles(path, recursive)
}
