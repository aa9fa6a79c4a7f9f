package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/bwckit/internal/constants"
	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
	"github.com/mrz1836/bwckit/internal/flock"
)

// DefaultConfiguration is the shared output bucket bwc builds register their
// distributions into. Downstream consumers resolve artifacts by
// configuration name.
const DefaultConfiguration = "bwc-artifacts"

// ModuleName is the logical module label attached to every registered
// artifact.
const ModuleName = "elasticsearch"

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// Entry records one produced distribution file. Registration is
// pass-through: the file is referenced in place, never copied.
type Entry struct {
	// ID uniquely identifies the registration. Format: art-{uuid8}.
	ID string `json:"id"`

	// Module is the logical module the artifact belongs to.
	Module string `json:"module"`

	// Subproject names the bwc subproject that built the artifact.
	Subproject string `json:"subproject"`

	// Format is the packaging format label (deb, rpm, zip).
	Format constants.PackageFormat `json:"format"`

	// Path is the absolute location of the file inside the checkout.
	Path string `json:"path"`

	// Version is the rendered version string the file was built for.
	Version string `json:"version"`

	// RunID references the pipeline run that produced the artifact.
	RunID string `json:"run_id"`

	// RegisteredAt is when the entry was recorded (UTC).
	RegisteredAt time.Time `json:"registered_at"`
}

// NewEntry builds a registry entry for one produced file.
func NewEntry(subproject, version string, format constants.PackageFormat, path, runID string) Entry {
	return Entry{
		ID:           "art-" + uuid.New().String()[:8],
		Module:       ModuleName,
		Subproject:   subproject,
		Format:       format,
		Path:         path,
		Version:      version,
		RunID:        runID,
		RegisteredAt: time.Now().UTC(),
	}
}

// registryFile is the on-disk JSON shape: entries grouped by configuration.
type registryFile struct {
	SchemaVersion  string             `json:"schema_version"`
	Configurations map[string][]Entry `json:"configurations"`
}

// Registry persists artifact registrations as JSON under the bwc home
// directory. Concurrent subproject pipelines register independently, so
// every read-modify-write runs under an exclusive file lock.
type Registry struct {
	homeDir     string // Usually ~/.bwc
	lockTimeout time.Duration
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLockTimeout overrides how long Register waits for the file lock.
// Non-positive values are ignored.
func WithLockTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.lockTimeout = d
		}
	}
}

// NewRegistry creates a Registry rooted at the given bwc home directory.
// If bwcHome is empty, uses the default ~/.bwc directory.
func NewRegistry(bwcHome string, opts ...RegistryOption) (*Registry, error) {
	if bwcHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		bwcHome = filepath.Join(home, constants.BwcHome)
	}
	r := &Registry{
		homeDir:     bwcHome,
		lockTimeout: constants.DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// FilePath returns the location of the registry file.
func (r *Registry) FilePath() string {
	return filepath.Join(r.homeDir, constants.RegistryFileName)
}

// Register records entries under a configuration. An entry whose path is
// already registered in that configuration replaces the older registration,
// so repeated runs of the same subproject do not grow the file.
func (r *Registry) Register(ctx context.Context, configuration string, entries ...Entry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if configuration == "" {
		return fmt.Errorf("failed to register artifacts: configuration %w", bwcerrors.ErrEmptyValue)
	}
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		if entry.Path == "" {
			return fmt.Errorf("failed to register artifacts: entry path %w", bwcerrors.ErrEmptyValue)
		}
	}

	if err := os.MkdirAll(r.homeDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	lock, err := flock.Acquire(ctx, r.FilePath()+".lock", r.lockTimeout, constants.LockRetryInterval)
	if err != nil {
		return fmt.Errorf("failed to register artifacts: %w", err)
	}
	defer func() { _ = lock.Release() }()

	file, err := r.readFile()
	if err != nil {
		return err
	}

	existing := file.Configurations[configuration]
	for _, entry := range entries {
		existing = upsert(existing, entry)
	}
	file.Configurations[configuration] = existing
	file.SchemaVersion = constants.RegistrySchemaVersion

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact registry: %w", err)
	}
	if err := atomicWrite(r.FilePath(), data); err != nil {
		return fmt.Errorf("failed to write artifact registry: %w", err)
	}
	return nil
}

// List returns the entries registered under a configuration, sorted by
// subproject then format for stable output. A missing registry file means
// nothing has been registered yet, not an error.
func (r *Registry) List(ctx context.Context, configuration string) ([]Entry, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if configuration == "" {
		return nil, fmt.Errorf("failed to list artifacts: configuration %w", bwcerrors.ErrEmptyValue)
	}

	file, err := r.readFile()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(file.Configurations[configuration]))
	copy(entries, file.Configurations[configuration])
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Subproject != entries[j].Subproject {
			return entries[i].Subproject < entries[j].Subproject
		}
		return entries[i].Format < entries[j].Format
	})
	return entries, nil
}

// upsert replaces the entry with the same path or appends a new one.
func upsert(entries []Entry, entry Entry) []Entry {
	for i := range entries {
		if entries[i].Path == entry.Path {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}

// readFile loads the registry, returning an empty one when the file does not
// exist yet.
func (r *Registry) readFile() (*registryFile, error) {
	data, err := os.ReadFile(r.FilePath()) //#nosec G304 -- path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return &registryFile{
				SchemaVersion:  constants.RegistrySchemaVersion,
				Configurations: map[string][]Entry{},
			}, nil
		}
		return nil, fmt.Errorf("failed to read artifact registry: %w", err)
	}

	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", bwcerrors.ErrRegistryCorrupted, err)
	}
	if file.Configurations == nil {
		file.Configurations = map[string][]Entry{}
	}
	return &file, nil
}

// atomicWrite writes data to path atomically using a temp file and rename.
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
