package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/pipeline"
	"github.com/mrz1836/bwckit/internal/tui"
)

func statusEntry(sub string, stage constants.Stage, updated *time.Time) pipeline.StatusEntry {
	return pipeline.StatusEntry{
		PlanEntry: pipeline.PlanEntry{
			Subproject:  sub,
			Version:     "5.6.17-SNAPSHOT",
			Branch:      "5.6",
			Refspec:     "elastic/5.6",
			CheckoutDir: "/scratch/" + sub,
		},
		Commit: "9f2d1c7a8b3e4d5c6f7a8b9c0d1e2f3a4b5c6d7e",
		Artifacts: map[constants.PackageFormat]bool{
			constants.FormatDeb: true,
			constants.FormatRPM: true,
			constants.FormatZip: stage == constants.StageVerified,
		},
		LastStage:     stage,
		LastUpdatedAt: updated,
	}
}

func TestStatusRows(t *testing.T) {
	t.Parallel()

	updated := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	entries := []pipeline.StatusEntry{
		statusEntry("5.6", constants.StageVerified, &updated),
		statusEntry("6.1", "", nil),
	}

	rows := statusRows(entries)
	require.Len(t, rows, 2)

	assert.Equal(t, "5.6", rows[0].Subproject)
	assert.Equal(t, "5.6.17-SNAPSHOT", rows[0].Version)
	assert.Equal(t, constants.StageVerified, rows[0].Stage)
	assert.Equal(t, updated, rows[0].UpdatedAt)
	assert.True(t, rows[0].Artifacts[constants.FormatZip])

	assert.Equal(t, "6.1", rows[1].Subproject)
	assert.Empty(t, rows[1].Stage, "never-built subproject has no stage")
	assert.True(t, rows[1].UpdatedAt.IsZero(), "nil timestamp maps to the zero time")
}

func TestRenderStatus_FooterCountsAndSuggestion(t *testing.T) {
	t.Parallel()

	updated := time.Now().Add(-time.Hour)
	rows := statusRows([]pipeline.StatusEntry{
		statusEntry("5.6", constants.StageVerified, &updated),
		statusEntry("6.1", constants.StageFailed, &updated),
		statusEntry("next-minor-snapshot", "", nil),
	})

	var buf bytes.Buffer
	require.NoError(t, renderStatus(&buf, rows, false))

	output := buf.String()
	assert.Contains(t, output, "5.6")
	assert.Contains(t, output, "next-minor-snapshot")
	assert.Contains(t, output, "3 subprojects, 1 verified")
	assert.Contains(t, output, "Run: bwc build 6.1", "first unverified subproject is suggested")
}

func TestRenderStatus_AllVerifiedNoSuggestion(t *testing.T) {
	t.Parallel()

	updated := time.Now()
	rows := statusRows([]pipeline.StatusEntry{
		statusEntry("5.6", constants.StageVerified, &updated),
	})

	var buf bytes.Buffer
	require.NoError(t, renderStatus(&buf, rows, false))

	output := buf.String()
	assert.Contains(t, output, "1 subprojects, 1 verified")
	assert.NotContains(t, output, "Run: bwc build")
}

func TestRenderStatus_QuietSkipsFooter(t *testing.T) {
	t.Parallel()

	rows := statusRows([]pipeline.StatusEntry{
		statusEntry("5.6", constants.StageFailed, nil),
	})

	var buf bytes.Buffer
	require.NoError(t, renderStatus(&buf, rows, true))

	output := buf.String()
	assert.Contains(t, output, "5.6")
	assert.NotContains(t, output, "subprojects,")
	assert.NotContains(t, output, "Run: bwc build")
}

func TestRenderStatus_TableCells(t *testing.T) {
	t.Parallel()

	updated := time.Now().Add(-2 * time.Hour)
	rows := []tui.StatusRow{
		{
			Subproject: "6.1",
			Version:    "6.1.5-SNAPSHOT",
			Branch:     "6.1",
			Commit:     "0123456789abcdef0123456789abcdef01234567",
			Stage:      constants.StageBuilt,
			Artifacts: map[constants.PackageFormat]bool{
				constants.FormatDeb: true,
				constants.FormatZip: true,
			},
			UpdatedAt: updated,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderStatus(&buf, rows, true))

	output := buf.String()
	assert.Contains(t, output, "01234567", "commit is shortened")
	assert.Contains(t, output, "deb - zip", "missing rpm shows as a dash")
}

func TestStatusCommand_NeverBuilt(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BWC_HOME", t.TempDir())

	project := initGitRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(project, "bwcversions.yaml"), []byte(`
versions:
  "5.6": 5.6.17-SNAPSHOT
`), 0o600))
	t.Chdir(project)

	var buf bytes.Buffer
	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{})
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"status", "--output", "json"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var entries []pipeline.StatusEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "5.6", entries[0].Subproject)
	assert.Equal(t, "elastic/5.6", entries[0].Refspec)
	assert.False(t, entries[0].CheckoutExists)
	assert.Empty(t, entries[0].Commit)
	assert.Empty(t, entries[0].LastRunID)
}

func TestStatusCommand_NoVersionsConfigured(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BWC_HOME", t.TempDir())

	project := initGitRepo(t)
	t.Chdir(project)

	var buf bytes.Buffer
	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{})
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"status"})

	require.NoError(t, cmd.ExecuteContext(context.Background()), "an empty table is not an error")
	assert.Contains(t, buf.String(), "No bwc versions configured")
}

func TestStatusCommand_TextTable(t *testing.T) {
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
	cmd.SetArgs([]string{"status"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	output := buf.String()
	assert.Contains(t, output, "5.6")
	assert.Contains(t, output, "6.1")
	assert.Contains(t, output, "2 subprojects, 0 verified")
	assert.Contains(t, output, "Run: bwc build 5.6")
}
