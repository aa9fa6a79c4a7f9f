// Package git provides Git operations for bwckit.
// This file implements the CLIRunner which wraps git CLI commands.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

// dirPerm is the permission mode for directories created on the clone path.
const dirPerm = 0o750

// CLIRunner implements Runner using the git CLI.
// Unlike a general-purpose runner it does not require the directory to be a
// repository at construction time: the clone operation is what creates it.
type CLIRunner struct {
	workDir string // Checkout directory for git commands
}

// NewRunner creates a new CLIRunner for the given checkout directory.
func NewRunner(workDir string) (*CLIRunner, error) {
	if workDir == "" {
		return nil, fmt.Errorf("checkout directory cannot be empty: %w", bwcerrors.ErrEmptyValue)
	}
	return &CLIRunner{workDir: workDir}, nil
}

// Dir returns the checkout directory path.
func (r *CLIRunner) Dir() string {
	return r.workDir
}

// Exists reports whether the checkout directory is present on disk.
// Existence is the only test; a half-cloned or corrupted directory also
// counts and will surface as failures in later stages.
func (r *CLIRunner) Exists() bool {
	info, err := os.Stat(r.workDir)
	return err == nil && info.IsDir()
}

// Clone clones repoURL into the checkout directory. The parent directory is
// created first; the clone itself runs from there so git creates the final
// path element.
func (r *CLIRunner) Clone(ctx context.Context, repoURL string) error {
	if repoURL == "" {
		return fmt.Errorf("repository URL cannot be empty: %w", bwcerrors.ErrEmptyValue)
	}

	parent := filepath.Dir(r.workDir)
	if err := os.MkdirAll(parent, dirPerm); err != nil {
		return fmt.Errorf("failed to create checkout parent: %w", err)
	}

	_, err := RunCommand(ctx, parent, "clone", repoURL, r.workDir)
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", repoURL, err)
	}
	return nil
}

// ListRemotes returns the raw verbose remote listing for the checkout.
func (r *CLIRunner) ListRemotes(ctx context.Context) (string, error) {
	output, err := RunCommand(ctx, r.workDir, "remote", "-v")
	if err != nil {
		return "", fmt.Errorf("failed to list remotes: %w", err)
	}
	return output, nil
}

// AddRemote registers the remote under its name.
func (r *CLIRunner) AddRemote(ctx context.Context, remote Remote) error {
	if remote.Name == "" || remote.URL == "" {
		return fmt.Errorf("remote name and URL cannot be empty: %w", bwcerrors.ErrEmptyValue)
	}

	_, err := RunCommand(ctx, r.workDir, "remote", "add", remote.Name, remote.URL)
	if err != nil {
		return fmt.Errorf("failed to add remote %s: %w", remote.Name, err)
	}
	return nil
}

// FetchAll downloads objects and refs from all remotes.
func (r *CLIRunner) FetchAll(ctx context.Context) error {
	_, err := RunCommand(ctx, r.workDir, "fetch", "--all")
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	return nil
}

// Checkout checks out the given refspec.
func (r *CLIRunner) Checkout(ctx context.Context, refspec string) error {
	if refspec == "" {
		return fmt.Errorf("refspec cannot be empty: %w", bwcerrors.ErrEmptyValue)
	}

	_, err := RunCommand(ctx, r.workDir, "checkout", refspec)
	if err != nil {
		return fmt.Errorf("failed to checkout %s: %w", refspec, err)
	}
	return nil
}

// HeadCommit returns the full hash of the checked-out commit. The error path
// deliberately skips the usual message wrapping: the *CommandError is
// returned wrapped only with the rev-parse sentinel so the caller can pull
// stderr lines out of it for logging.
func (r *CLIRunner) HeadCommit(ctx context.Context) (string, error) {
	output, err := RunCommand(ctx, r.workDir, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("%w: %w", bwcerrors.ErrRevParseFailed, err)
	}
	return output, nil
}

// Ensure CLIRunner implements Runner.
var _ Runner = (*CLIRunner)(nil)
