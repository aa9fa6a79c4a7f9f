package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

func TestVersionEntries(t *testing.T) {
	t.Parallel()

	entries, err := versionEntries(map[string]string{
		"6.1":                 "6.1.5-SNAPSHOT",
		"5.6":                 "5.6.17-SNAPSHOT",
		"next-minor-snapshot": "6.2.0-SNAPSHOT",
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "5.6", entries[0].Subproject, "entries are sorted by name")
	assert.Equal(t, ":distribution:bwc:5.6", entries[0].Path)
	assert.Equal(t, "5.6.17-SNAPSHOT", entries[0].Version)
	assert.Equal(t, "5.6", entries[0].Branch)

	assert.Equal(t, "6.1", entries[1].Subproject)
	assert.Equal(t, "6.1", entries[1].Branch)

	assert.Equal(t, "next-minor-snapshot", entries[2].Subproject)
	assert.Equal(t, "6.x", entries[2].Branch, "rolling subproject tracks the major.x branch")
}

func TestVersionEntries_Empty(t *testing.T) {
	t.Parallel()

	entries, err := versionEntries(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVersionEntries_InvalidVersion(t *testing.T) {
	t.Parallel()

	_, err := versionEntries(map[string]string{"5.6": "not-a-version"})
	require.Error(t, err)
	require.ErrorIs(t, err, bwcerrors.ErrInvalidVersion)
	assert.Contains(t, err.Error(), "subproject 5.6")
}

func TestRenderVersions(t *testing.T) {
	t.Parallel()

	entries := []versionEntry{
		{Subproject: "5.6", Path: ":distribution:bwc:5.6", Version: "5.6.17-SNAPSHOT", Branch: "5.6"},
		{Subproject: "next-minor-snapshot", Path: ":distribution:bwc:next-minor-snapshot", Version: "6.2.0-SNAPSHOT", Branch: "6.x"},
	}

	var buf bytes.Buffer
	require.NoError(t, renderVersions(&buf, entries))

	output := buf.String()
	assert.Contains(t, output, "SUBPROJECT")
	assert.Contains(t, output, "VERSION")
	assert.Contains(t, output, "BRANCH")
	assert.Contains(t, output, "5.6.17-SNAPSHOT")
	assert.Contains(t, output, "next-minor-snapshot")
	assert.Contains(t, output, "6.x")

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	assert.Len(t, lines, 3, "header plus one line per entry")
}

func TestVersionsCommand_JSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BWC_HOME", t.TempDir())

	project := initGitRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(project, "bwcversions.yaml"), []byte(`
versions:
  "5.6": 5.6.17-SNAPSHOT
  "6.1": 6.1.5-SNAPSHOT
`), 0o600))
	t.Chdir(project)

	var buf bytes.Buffer
	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{})
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"versions", "--output", "json"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var entries []versionEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "5.6", entries[0].Subproject)
	assert.Equal(t, "5.6.17-SNAPSHOT", entries[0].Version)
	assert.Equal(t, "6.1", entries[1].Subproject)
}

func TestVersionsCommand_NoVersionsConfigured(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BWC_HOME", t.TempDir())

	project := initGitRepo(t)
	t.Chdir(project)

	var buf bytes.Buffer
	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{})
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"versions"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, buf.String(), "No bwc versions configured")
}

func TestVersionsCommand_OutsideRepo(t *testing.T) {
	t.Setenv("BWC_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var buf bytes.Buffer
	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{})
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"versions"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, bwcerrors.ErrNotGitRepo)
	assert.Equal(t, ExitError, ExitCodeForError(err))
}
