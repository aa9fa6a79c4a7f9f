package git

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

func TestNewRunner(t *testing.T) {
	t.Run("empty directory rejected", func(t *testing.T) {
		_, err := NewRunner("")
		require.Error(t, err)
		assert.ErrorIs(t, err, bwcerrors.ErrEmptyValue)
	})

	t.Run("nonexistent directory accepted", func(t *testing.T) {
		// The directory is created by Clone, so construction must not
		// require it to exist.
		r, err := NewRunner(filepath.Join(t.TempDir(), "not-yet-cloned"))
		require.NoError(t, err)
		assert.False(t, r.Exists())
	})
}

func TestCLIRunner_Exists(t *testing.T) {
	dir := createTestGitRepo(t)

	r, err := NewRunner(dir)
	require.NoError(t, err)
	assert.True(t, r.Exists())
	assert.Equal(t, dir, r.Dir())
}

func TestCLIRunner_Clone(t *testing.T) {
	// Source repo with one commit so HEAD resolves after cloning
	src := createTestGitRepo(t)
	commitFile(t, src, "README.md", "upstream\n")

	dest := filepath.Join(t.TempDir(), "checkouts", "5.6")
	r, err := NewRunner(dest)
	require.NoError(t, err)
	require.False(t, r.Exists())

	require.NoError(t, r.Clone(context.Background(), src))

	assert.True(t, r.Exists())
	commit, err := r.HeadCommit(context.Background())
	require.NoError(t, err)
	assert.Len(t, commit, 40)
}

func TestCLIRunner_Clone_EmptyURL(t *testing.T) {
	r, err := NewRunner(filepath.Join(t.TempDir(), "dest"))
	require.NoError(t, err)

	err = r.Clone(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, bwcerrors.ErrEmptyValue)
}

func TestCLIRunner_Remotes(t *testing.T) {
	src := createTestGitRepo(t)
	commitFile(t, src, "README.md", "upstream\n")

	dest := filepath.Join(t.TempDir(), "checkout")
	r, err := NewRunner(dest)
	require.NoError(t, err)
	require.NoError(t, r.Clone(context.Background(), src))

	t.Run("clone has origin only", func(t *testing.T) {
		output, listErr := r.ListRemotes(context.Background())
		require.NoError(t, listErr)
		assert.Contains(t, output, "origin\t")
		assert.NotContains(t, output, "elastic\t")
	})

	t.Run("add and list", func(t *testing.T) {
		remote := Remote{Name: "elastic", URL: "https://github.com/elastic/elasticsearch.git"}
		require.NoError(t, r.AddRemote(context.Background(), remote))

		output, listErr := r.ListRemotes(context.Background())
		require.NoError(t, listErr)
		assert.True(t, remote.Listed(output))
	})

	t.Run("duplicate name rejected by git", func(t *testing.T) {
		remote := Remote{Name: "elastic", URL: "https://github.com/elastic/elasticsearch.git"}
		err := r.AddRemote(context.Background(), remote)
		require.Error(t, err)
		assert.ErrorIs(t, err, bwcerrors.ErrGitOperation)
	})

	t.Run("empty remote rejected", func(t *testing.T) {
		err := r.AddRemote(context.Background(), Remote{})
		require.Error(t, err)
		assert.ErrorIs(t, err, bwcerrors.ErrEmptyValue)
	})
}

func TestCLIRunner_FetchAll(t *testing.T) {
	src := createTestGitRepo(t)
	commitFile(t, src, "README.md", "upstream\n")

	dest := filepath.Join(t.TempDir(), "checkout")
	r, err := NewRunner(dest)
	require.NoError(t, err)
	require.NoError(t, r.Clone(context.Background(), src))

	// New commit lands upstream after the clone
	commitFile(t, src, "CHANGELOG.md", "5.6.17\n")

	require.NoError(t, r.FetchAll(context.Background()))

	// The fetched ref is resolvable in the checkout
	sha, err := RunCommand(context.Background(), dest, "rev-parse", "origin/HEAD")
	require.NoError(t, err)
	assert.Len(t, sha, 40)
}

func TestCLIRunner_Checkout(t *testing.T) {
	src := createTestGitRepo(t)
	commitFile(t, src, "README.md", "upstream\n")
	_, err := RunCommand(context.Background(), src, "branch", "5.6")
	require.NoError(t, err)
	commitFile(t, src, "extra.txt", "later work\n")

	dest := filepath.Join(t.TempDir(), "checkout")
	r, rErr := NewRunner(dest)
	require.NoError(t, rErr)
	require.NoError(t, r.Clone(context.Background(), src))

	t.Run("remote tracking branch", func(t *testing.T) {
		require.NoError(t, r.Checkout(context.Background(), "origin/5.6"))

		head, headErr := r.HeadCommit(context.Background())
		require.NoError(t, headErr)
		branchTip, tipErr := RunCommand(context.Background(), dest, "rev-parse", "origin/5.6")
		require.NoError(t, tipErr)
		assert.Equal(t, branchTip, head)
	})

	t.Run("unknown refspec fails", func(t *testing.T) {
		err := r.Checkout(context.Background(), "origin/9.9")
		require.Error(t, err)
		assert.ErrorIs(t, err, bwcerrors.ErrGitOperation)
	})

	t.Run("empty refspec rejected", func(t *testing.T) {
		err := r.Checkout(context.Background(), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, bwcerrors.ErrEmptyValue)
	})
}

func TestCLIRunner_HeadCommit_Failure(t *testing.T) {
	// A fresh repo with no commits cannot resolve HEAD
	dir := createTestGitRepo(t)
	r, err := NewRunner(dir)
	require.NoError(t, err)

	_, err = r.HeadCommit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, bwcerrors.ErrRevParseFailed)

	// stderr survives for line-by-line logging
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.NotEmpty(t, cmdErr.StderrLines())
}
