// Package git provides Git operations for bwckit.
// This file defines the Runner interface for git CLI operations.
package git

import "context"

// Runner defines the git operations the build pipeline needs against one
// checkout directory. All operations use context for cancellation; none of
// them impose a deadline of their own.
type Runner interface {
	// Exists reports whether the checkout directory is already present.
	// Presence alone skips cloning; the content is trusted as a reusable
	// cache and never revalidated.
	Exists() bool

	// Clone clones the repository at repoURL into the checkout directory.
	Clone(ctx context.Context, repoURL string) error

	// ListRemotes returns the raw verbose remote listing (`git remote -v`)
	// for the checkout. Raw output, not parsed entries: remote detection
	// scans the text form directly.
	ListRemotes(ctx context.Context) (string, error)

	// AddRemote registers the remote under its name in the checkout.
	AddRemote(ctx context.Context, remote Remote) error

	// FetchAll downloads objects and refs from all remotes without merging.
	FetchAll(ctx context.Context) error

	// Checkout checks out the given refspec, detaching if it names a
	// remote-tracking ref.
	Checkout(ctx context.Context, refspec string) error

	// HeadCommit returns the full hash of the currently checked-out commit.
	// On failure the returned error carries the tool's stderr for
	// line-by-line logging.
	HeadCommit(ctx context.Context) (string, error)

	// Dir returns the checkout directory path.
	Dir() string
}
