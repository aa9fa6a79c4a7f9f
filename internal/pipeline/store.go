package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/mrz1836/bwckit/internal/clock"
	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/domain"
	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// validRunIDRegex matches valid run IDs (run-YYYYMMDD-HHMMSS).
var validRunIDRegex = regexp.MustCompile(`^run-\d{8}-\d{6}$`)

// GenerateRunID generates a run ID with format run-YYYYMMDD-HHMMSS from the
// clock. One subproject starts at most one run per process, so second
// resolution is enough.
func GenerateRunID(c clock.Clock) string {
	now := c.Now().UTC()
	return fmt.Sprintf("run-%s-%s",
		now.Format("20060102"),
		now.Format("150405"))
}

// Store defines the interface for run record persistence.
type Store interface {
	// Create persists a new run record for the subproject.
	// Returns ErrRunExists if a run with the same ID exists.
	Create(ctx context.Context, subproject string, run *domain.Run) error

	// Update saves the current run state (atomic write).
	// Returns ErrRunNotFound if the run doesn't exist.
	Update(ctx context.Context, subproject string, run *domain.Run) error

	// Get retrieves a run by ID.
	// Returns ErrRunNotFound if the run doesn't exist.
	Get(ctx context.Context, subproject, runID string) (*domain.Run, error)

	// List returns all runs for a subproject, newest first.
	List(ctx context.Context, subproject string) ([]*domain.Run, error)

	// Latest returns the most recent run for a subproject.
	// Returns ErrRunNotFound when the subproject has never run.
	Latest(ctx context.Context, subproject string) (*domain.Run, error)

	// WriteBuildLog persists the delegated build's captured output next to
	// the run record and returns the written path.
	// Returns ErrRunNotFound if the run doesn't exist.
	WriteBuildLog(ctx context.Context, subproject, runID string, data []byte) (string, error)
}

// FileStore implements Store using the local filesystem. Run records live
// under <bwcHome>/runs/<subproject>/<runID>/run.json; the per-run directory
// leaves room for captured build logs next to the record.
type FileStore struct {
	homeDir string // Usually ~/.bwc
}

// NewFileStore creates a FileStore rooted at the given bwc home directory.
// If bwcHome is empty, uses the default ~/.bwc directory.
func NewFileStore(bwcHome string) (*FileStore, error) {
	if bwcHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		bwcHome = filepath.Join(home, constants.BwcHome)
	}
	return &FileStore{homeDir: bwcHome}, nil
}

// RunDir returns the directory holding one run's record and logs.
func (s *FileStore) RunDir(subproject, runID string) string {
	return filepath.Join(s.homeDir, constants.RunsDir, subproject, runID)
}

// runFilePath returns the path of the run record inside the run directory.
func (s *FileStore) runFilePath(subproject, runID string) string {
	return filepath.Join(s.RunDir(subproject, runID), constants.RunFileName)
}

// Create persists a new run record for the subproject.
func (s *FileStore) Create(ctx context.Context, subproject string, run *domain.Run) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := validateRunArgs(subproject, run); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	runDir := s.RunDir(subproject, run.ID)
	if _, err := os.Stat(runDir); err == nil {
		return fmt.Errorf("failed to create run '%s': %w", run.ID, bwcerrors.ErrRunExists)
	}
	if err := os.MkdirAll(runDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	run.SchemaVersion = constants.RunSchemaVersion
	if err := s.write(subproject, run); err != nil {
		_ = os.RemoveAll(runDir)
		return fmt.Errorf("failed to create run '%s': %w", run.ID, err)
	}
	return nil
}

// Update saves the current run state (atomic write).
func (s *FileStore) Update(ctx context.Context, subproject string, run *domain.Run) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := validateRunArgs(subproject, run); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	if _, err := os.Stat(s.RunDir(subproject, run.ID)); os.IsNotExist(err) {
		return fmt.Errorf("failed to update run '%s': %w", run.ID, bwcerrors.ErrRunNotFound)
	}

	run.UpdatedAt = time.Now().UTC()
	if err := s.write(subproject, run); err != nil {
		return fmt.Errorf("failed to update run '%s': %w", run.ID, err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *FileStore) Get(ctx context.Context, subproject, runID string) (*domain.Run, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if subproject == "" {
		return nil, fmt.Errorf("failed to get run: subproject %w", bwcerrors.ErrEmptyValue)
	}
	if !validRunIDRegex.MatchString(runID) {
		return nil, fmt.Errorf("failed to get run: invalid run ID '%s': %w", runID, bwcerrors.ErrInvalidArgument)
	}

	data, err := os.ReadFile(s.runFilePath(subproject, runID)) //#nosec G304 -- path is validated and constructed from trusted base
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to get run '%s': %w", runID, bwcerrors.ErrRunNotFound)
		}
		return nil, fmt.Errorf("failed to read run '%s': %w", runID, err)
	}

	var run domain.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run '%s': corrupted record: %w", runID, err)
	}
	return &run, nil
}

// List returns all runs for a subproject, newest first.
func (s *FileStore) List(ctx context.Context, subproject string) ([]*domain.Run, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if subproject == "" {
		return nil, fmt.Errorf("failed to list runs: subproject %w", bwcerrors.ErrEmptyValue)
	}

	subDir := filepath.Join(s.homeDir, constants.RunsDir, subproject)
	entries, err := os.ReadDir(subDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.Run{}, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*domain.Run, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !validRunIDRegex.MatchString(entry.Name()) {
			continue
		}
		run, err := s.Get(ctx, subproject, entry.Name())
		if err != nil {
			// Skip unreadable records rather than failing the listing.
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// Latest returns the most recent run for a subproject.
func (s *FileStore) Latest(ctx context.Context, subproject string) (*domain.Run, error) {
	runs, err := s.List(ctx, subproject)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs for subproject '%s': %w", subproject, bwcerrors.ErrRunNotFound)
	}
	return runs[0], nil
}

// BuildLogPath returns the location of the captured build output for a run.
func (s *FileStore) BuildLogPath(subproject, runID string) string {
	return filepath.Join(s.RunDir(subproject, runID), constants.BuildLogFileName)
}

// WriteBuildLog persists the delegated build's captured output next to the
// run record and returns the written path. The run must already exist.
func (s *FileStore) WriteBuildLog(ctx context.Context, subproject, runID string, data []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if subproject == "" {
		return "", fmt.Errorf("failed to write build log: subproject %w", bwcerrors.ErrEmptyValue)
	}
	if !validRunIDRegex.MatchString(runID) {
		return "", fmt.Errorf("failed to write build log: invalid run ID '%s': %w", runID, bwcerrors.ErrInvalidArgument)
	}
	if _, err := os.Stat(s.RunDir(subproject, runID)); os.IsNotExist(err) {
		return "", fmt.Errorf("failed to write build log for run '%s': %w", runID, bwcerrors.ErrRunNotFound)
	}

	path := s.BuildLogPath(subproject, runID)
	if err := atomicWrite(path, data); err != nil {
		return "", fmt.Errorf("failed to write build log for run '%s': %w", runID, err)
	}
	return path, nil
}

// write marshals the run and writes it atomically.
func (s *FileStore) write(subproject string, run *domain.Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	return atomicWrite(s.runFilePath(subproject, run.ID), data)
}

// validateRunArgs checks the common preconditions for Create and Update.
func validateRunArgs(subproject string, run *domain.Run) error {
	if subproject == "" {
		return fmt.Errorf("subproject %w", bwcerrors.ErrEmptyValue)
	}
	if run == nil {
		return fmt.Errorf("run %w", bwcerrors.ErrEmptyValue)
	}
	if run.ID == "" {
		return fmt.Errorf("run ID %w", bwcerrors.ErrEmptyValue)
	}
	return nil
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

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
