// Package metadata persists per-subproject build metadata for bwckit.
// This package implements the storage layer for build_metadata files,
// with atomic writes and file locking for data integrity.
//
// Each subproject owns one file at build/<name>/build_metadata holding
// key=value lines. In practice a file carries a single line: the refspec key
// for the subproject mapped to the commit hash last built. The value is read
// back on the next run and used verbatim as the default refspec, which pins
// rebuilds to the same commit until a fetch moves the branch on purpose.
package metadata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/domain"
	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
	"github.com/mrz1836/bwckit/internal/flock"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// Store reads and writes build_metadata files under a project root.
// Concurrent subproject pipelines share the build/ tree, so every
// read-modify-write runs under an exclusive file lock.
type Store struct {
	rootDir     string // Project root containing the build/ directory
	lockTimeout time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLockTimeout overrides how long Set waits for the file lock.
// Non-positive values are ignored.
func WithLockTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// NewStore creates a Store rooted at the given project directory.
func NewStore(rootDir string, opts ...StoreOption) (*Store, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("failed to create metadata store: root directory %w", bwcerrors.ErrEmptyValue)
	}
	s := &Store{
		rootDir:     rootDir,
		lockTimeout: constants.DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FilePath returns the metadata file path for a subproject:
// <root>/build/<name>/build_metadata. The layout is fixed; downstream
// tooling addresses these files directly.
func (s *Store) FilePath(sub domain.Subproject) string {
	return filepath.Join(s.rootDir, constants.BuildDir, sub.Name, constants.MetadataFileName)
}

// Get returns the value stored under key for the subproject. A missing file
// or missing key is not an error; the second return reports presence.
func (s *Store) Get(ctx context.Context, sub domain.Subproject, key string) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	default:
	}

	values, err := s.readFile(s.FilePath(sub))
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

// Set records key=value for the subproject, creating parent directories as
// needed. Other keys in the file survive; the write is atomic and guarded by
// a file lock against concurrent pipelines.
func (s *Store) Set(ctx context.Context, sub domain.Subproject, key, value string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if key == "" {
		return fmt.Errorf("failed to set metadata: key %w", bwcerrors.ErrEmptyValue)
	}

	path := s.FilePath(sub)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	lock, err := flock.Acquire(ctx, path+".lock", s.lockTimeout, constants.LockRetryInterval)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	values, err := s.readFile(path)
	if err != nil {
		return err
	}
	values[key] = value

	return atomicWrite(path, encode(values))
}

// Refspec returns the persisted refspec value for the subproject, read from
// the key the pipeline writes (bwc_refspec_<path>). The value is used
// verbatim as a refspec on the next run.
func (s *Store) Refspec(ctx context.Context, sub domain.Subproject) (string, bool, error) {
	return s.Get(ctx, sub, sub.MetadataKey())
}

// RecordCommit persists the commit hash the subproject's checkout resolved
// to, under the subproject's refspec key.
func (s *Store) RecordCommit(ctx context.Context, sub domain.Subproject, commit string) error {
	if commit == "" {
		return fmt.Errorf("failed to record commit: hash %w", bwcerrors.ErrEmptyValue)
	}
	return s.Set(ctx, sub, sub.MetadataKey(), commit)
}

// readFile parses a metadata file into a key→value map. Missing files yield
// an empty map. Lines must be key=value; anything else marks the file
// corrupted rather than being silently dropped.
func (s *Store) readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	values := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("malformed line %q in %s: %w", line, path, bwcerrors.ErrMetadataCorrupted)
		}
		values[key] = value
	}
	return values, nil
}

// encode renders the key→value map as sorted key=value lines with a trailing
// newline. Sorting keeps rewrites deterministic.
func encode(values map[string]string) []byte {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(values[k])
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// atomicWrite writes data to a file atomically using write-then-rename.
// Uses filePerm (0o600) for secure file permissions.
func atomicWrite(path string, data []byte) error {
	// Write to temp file
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	// Write data
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Sync to disk (ensure data is persisted before rename)
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	// Close file before rename
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
