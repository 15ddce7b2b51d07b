package staging

import (
	"os"

	"github.com/spf13/afero"
)

// FileSystem is the subset of filesystem operations the staging area needs
type FileSystem interface {
	// MkdirAll creates a directory and any necessary parent directories
	MkdirAll(path string, perm os.FileMode) error
	// Stat returns a FileInfo describing the named file
	Stat(name string) (os.FileInfo, error)
	// WriteFile writes data to a file, creating it exclusively
	WriteFile(name string, data []byte, perm os.FileMode) error
	// ReadDir reads a directory and returns a list of DirEntry
	ReadDir(name string) ([]os.DirEntry, error)
	// Remove removes a named file or empty directory
	Remove(name string) error
}

// aferoFileSystem adapts an afero.Fs to FileSystem
type aferoFileSystem struct {
	fs afero.Fs
}

func (fs *aferoFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return fs.fs.MkdirAll(path, perm)
}

func (fs *aferoFileSystem) Stat(name string) (os.FileInfo, error) {
	return fs.fs.Stat(name)
}

func (fs *aferoFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	f, err := fs.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (fs *aferoFileSystem) ReadDir(name string) ([]os.DirEntry, error) {
	entries, err := afero.ReadDir(fs.fs, name)
	if err != nil {
		return nil, err
	}

	dirEntries := make([]os.DirEntry, len(entries))
	for i, entry := range entries {
		dirEntries[i] = &aferoDirEntry{info: entry}
	}
	return dirEntries, nil
}

func (fs *aferoFileSystem) Remove(name string) error {
	return fs.fs.Remove(name)
}

// aferoDirEntry implements os.DirEntry using afero.FileInfo
type aferoDirEntry struct {
	info os.FileInfo
}

func (e *aferoDirEntry) Name() string               { return e.info.Name() }
func (e *aferoDirEntry) IsDir() bool                { return e.info.IsDir() }
func (e *aferoDirEntry) Type() os.FileMode          { return e.info.Mode().Type() }
func (e *aferoDirEntry) Info() (os.FileInfo, error) { return e.info, nil }

// NewOSFileSystem returns a FileSystem that uses the actual OS filesystem
func NewOSFileSystem() FileSystem {
	return &aferoFileSystem{fs: afero.NewOsFs()}
}

// NewMemMapFileSystem returns a FileSystem backed by afero's in-memory filesystem
func NewMemMapFileSystem() FileSystem {
	return &aferoFileSystem{fs: afero.NewMemMapFs()}
}

// NewAferoFileSystem wraps an afero.Fs in the FileSystem interface
func NewAferoFileSystem(fs afero.Fs) FileSystem {
	return &aferoFileSystem{fs: fs}
}
