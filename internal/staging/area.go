// Package staging writes uploaded bytes to short-lived files so external
// converters can read them by path.
package staging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kfreiman/office2md/internal/converter"
)

// StagingError represents a staging-related failure
type StagingError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StagingError) Error() string {
	msg := fmt.Sprintf("staging error during %s", e.Operation)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *StagingError) Unwrap() error {
	return e.Err
}

// Config holds configuration for the staging area
type Config struct {
	BasePath string
	TTL      time.Duration
	Logger   *slog.Logger // Optional: defaults to a discarding logger
	FS       FileSystem   // Optional: defaults to the OS filesystem
}

// DefaultBasePath is used when Config.BasePath is empty
func DefaultBasePath() string {
	return filepath.Join(os.TempDir(), "office2md")
}

// Area owns a directory of staged upload files
type Area struct {
	basePath string
	ttl      time.Duration
	logger   *slog.Logger
	fs       FileSystem

	// staged but not yet released; Sweep never removes these
	mu     sync.Mutex
	active map[string]struct{}
}

// File is a staged upload. Path keeps the original extension.
type File struct {
	Path         string
	OriginalName string
	Size         int
}

// NewArea creates the staging directory and returns an Area managing it
func NewArea(config Config) (*Area, error) {
	ctx := context.Background()

	if config.BasePath == "" {
		config.BasePath = DefaultBasePath()
	}
	if config.TTL == 0 {
		config.TTL = time.Hour
	}
	if config.FS == nil {
		config.FS = NewOSFileSystem()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := config.FS.MkdirAll(config.BasePath, 0o700); err != nil {
		config.Logger.ErrorContext(ctx, "failed to create staging directory",
			"error", err,
			"path", config.BasePath,
			"operation", "init",
		)
		return nil, &StagingError{
			Operation: "init - create directory",
			Path:      config.BasePath,
			Err:       err,
		}
	}

	config.Logger.InfoContext(ctx, "staging area initialized",
		"base_path", config.BasePath,
		"ttl", config.TTL,
	)

	return &Area{
		basePath: config.BasePath,
		ttl:      config.TTL,
		logger:   config.Logger,
		fs:       config.FS,
		active:   make(map[string]struct{}),
	}, nil
}

// BasePath returns the staging directory
func (a *Area) BasePath() string {
	return a.basePath
}

// Stage writes data to a new uniquely named file carrying the extension of originalName
func (a *Area) Stage(ctx context.Context, originalName string, data []byte) (*File, error) {
	name := uuid.NewString()
	if ext := converter.Extension(originalName); ext != "" {
		name += "." + ext
	}
	path := filepath.Join(a.basePath, name)

	a.mu.Lock()
	a.active[path] = struct{}{}
	a.mu.Unlock()

	if err := a.fs.WriteFile(path, data, 0o600); err != nil {
		a.forget(path)
		a.logger.ErrorContext(ctx, "failed to stage upload",
			"error", err,
			"path", path,
			"filename", originalName,
			"operation", "stage",
		)
		return nil, &StagingError{
			Operation: "stage upload",
			Path:      path,
			Err:       err,
		}
	}

	a.logger.DebugContext(ctx, "upload staged",
		"path", path,
		"filename", originalName,
		"size", len(data),
	)

	return &File{Path: path, OriginalName: originalName, Size: len(data)}, nil
}

// Release removes a staged file. Releasing an already removed file is not an error.
func (a *Area) Release(ctx context.Context, f *File) error {
	if f == nil {
		return nil
	}
	defer a.forget(f.Path)

	if err := a.fs.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		a.logger.ErrorContext(ctx, "failed to release staged file",
			"error", err,
			"path", f.Path,
			"operation", "release",
		)
		return &StagingError{
			Operation: "release",
			Path:      f.Path,
			Err:       err,
		}
	}

	a.logger.DebugContext(ctx, "staged file released", "path", f.Path)
	return nil
}

// Sweep removes staged files older than ttl, left behind by crashed requests.
// Files staged by this Area and not yet released are kept whatever their age.
// A zero ttl uses the configured default.
func (a *Area) Sweep(ctx context.Context, ttl time.Duration) (int64, error) {
	if ttl == 0 {
		ttl = a.ttl
	}

	entries, err := a.fs.ReadDir(a.basePath)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to read staging directory for sweep",
			"error", err,
			"dir", a.basePath,
		)
		return 0, &StagingError{
			Operation: "sweep",
			Path:      a.basePath,
			Err:       err,
		}
	}

	cutoff := time.Now().Add(-ttl)
	var removed int64

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(a.basePath, entry.Name())
		if a.inFlight(path) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := a.fs.Remove(path); err == nil {
				removed++
			}
		}
	}

	if removed > 0 {
		a.logger.InfoContext(ctx, "staging sweep completed",
			"removed", removed,
			"ttl", ttl,
		)
	}

	return removed, nil
}

func (a *Area) inFlight(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.active[path]
	return ok
}

func (a *Area) forget(path string) {
	a.mu.Lock()
	delete(a.active, path)
	a.mu.Unlock()
}

// IsAccessible checks that the staging directory exists
func (a *Area) IsAccessible() bool {
	info, err := a.fs.Stat(a.basePath)
	return err == nil && info.IsDir()
}
