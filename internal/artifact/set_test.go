package artifact_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/bwckit/internal/artifact"
	"github.com/mrz1836/bwckit/internal/constants"
	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

// writeArtifacts creates empty files at the set's expected paths for the
// given formats so existence checks can be exercised.
func writeArtifacts(t *testing.T, set artifact.Set, formats ...constants.PackageFormat) {
	t.Helper()
	for _, format := range formats {
		path := set.Path(format)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte{}, 0o600))
	}
}

func TestNewSet_Validation(t *testing.T) {
	_, err := artifact.NewSet("", "5.6.17-SNAPSHOT")
	require.Error(t, err)
	assert.ErrorIs(t, err, bwcerrors.ErrEmptyValue)

	_, err = artifact.NewSet("/tmp/checkout", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, bwcerrors.ErrEmptyValue)
}

func TestSet_Path(t *testing.T) {
	set, err := artifact.NewSet("/work/checkouts/5.6", "5.6.17-SNAPSHOT")
	require.NoError(t, err)

	want := filepath.Join("/work/checkouts/5.6", "distribution", "deb",
		"build", "distributions", "elasticsearch-5.6.17-SNAPSHOT.deb")
	assert.Equal(t, want, set.Path(constants.FormatDeb))
}

func TestSet_Paths_BuildOrder(t *testing.T) {
	set, err := artifact.NewSet("/work/checkouts/6.2", "6.2.0-SNAPSHOT")
	require.NoError(t, err)

	paths := set.Paths()
	require.Len(t, paths, 3)
	assert.Contains(t, paths[0], "elasticsearch-6.2.0-SNAPSHOT.deb")
	assert.Contains(t, paths[1], "elasticsearch-6.2.0-SNAPSHOT.rpm")
	assert.Contains(t, paths[2], "elasticsearch-6.2.0-SNAPSHOT.zip")
}

func TestSet_Verify_AllPresent(t *testing.T) {
	set, err := artifact.NewSet(t.TempDir(), "5.6.17-SNAPSHOT")
	require.NoError(t, err)
	writeArtifacts(t, set, constants.AllFormats()...)

	require.NoError(t, set.Verify())
	assert.Empty(t, set.Missing())
}

func TestSet_Verify_OneMissing(t *testing.T) {
	// Two of three present: the error must name exactly the missing rpm
	// and not the files that exist.
	set, err := artifact.NewSet(t.TempDir(), "5.6.17-SNAPSHOT")
	require.NoError(t, err)
	writeArtifacts(t, set, constants.FormatDeb, constants.FormatZip)

	err = set.Verify()
	require.Error(t, err)
	assert.ErrorIs(t, err, bwcerrors.ErrArtifactMissing)
	assert.Contains(t, err.Error(), set.Path(constants.FormatRPM))
	assert.NotContains(t, err.Error(), set.Path(constants.FormatDeb))
	assert.NotContains(t, err.Error(), set.Path(constants.FormatZip))

	missing := set.Missing()
	require.Len(t, missing, 1)
	assert.Equal(t, set.Path(constants.FormatRPM), missing[0])
}

func TestSet_Verify_AllMissing(t *testing.T) {
	set, err := artifact.NewSet(t.TempDir(), "6.0.0-SNAPSHOT")
	require.NoError(t, err)

	err = set.Verify()
	require.Error(t, err)
	assert.ErrorIs(t, err, bwcerrors.ErrArtifactMissing)
	for _, format := range constants.AllFormats() {
		assert.Contains(t, err.Error(), set.Path(format))
	}
}
