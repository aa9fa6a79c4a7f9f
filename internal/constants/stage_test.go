package constants

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_String(t *testing.T) {
	tests := []struct {
		name     string
		stage    Stage
		expected string
	}{
		{
			name:     "pending stage",
			stage:    StagePending,
			expected: "pending",
		},
		{
			name:     "cloned stage",
			stage:    StageCloned,
			expected: "cloned",
		},
		{
			name:     "remote_ensured stage",
			stage:    StageRemoteEnsured,
			expected: "remote_ensured",
		},
		{
			name:     "fetched stage",
			stage:    StageFetched,
			expected: "fetched",
		},
		{
			name:     "checked_out stage",
			stage:    StageCheckedOut,
			expected: "checked_out",
		},
		{
			name:     "metadata_written stage",
			stage:    StageMetadataWritten,
			expected: "metadata_written",
		},
		{
			name:     "built stage",
			stage:    StageBuilt,
			expected: "built",
		},
		{
			name:     "verified stage",
			stage:    StageVerified,
			expected: "verified",
		},
		{
			name:     "failed stage",
			stage:    StageFailed,
			expected: "failed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.stage.String())
		})
	}
}

func TestStage_IsTerminal(t *testing.T) {
	terminal := []Stage{StageVerified, StageFailed}
	for _, s := range terminal {
		t.Run(s.String(), func(t *testing.T) {
			assert.True(t, s.IsTerminal())
		})
	}

	nonTerminal := []Stage{
		StagePending, StageCloned, StageRemoteEnsured, StageFetched,
		StageCheckedOut, StageMetadataWritten, StageBuilt,
	}
	for _, s := range nonTerminal {
		t.Run(s.String(), func(t *testing.T) {
			assert.False(t, s.IsTerminal())
		})
	}
}

func TestStage_JSONRoundTrip(t *testing.T) {
	// Stages serialize as plain snake_case strings in run records
	data, err := json.Marshal(StageMetadataWritten)
	require.NoError(t, err)
	assert.Equal(t, `"metadata_written"`, string(data))

	var s Stage
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, StageMetadataWritten, s)
}

func TestPackageFormat_String(t *testing.T) {
	assert.Equal(t, "deb", FormatDeb.String())
	assert.Equal(t, "rpm", FormatRPM.String())
	assert.Equal(t, "zip", FormatZip.String())
}

func TestAllFormats(t *testing.T) {
	formats := AllFormats()
	require.Len(t, formats, 3)

	// Order is stable: deb, rpm, zip mirrors the delegated build's task order
	assert.Equal(t, []PackageFormat{FormatDeb, FormatRPM, FormatZip}, formats)

	// Each call returns a fresh slice so callers can't mutate shared state
	formats[0] = FormatZip
	assert.Equal(t, FormatDeb, AllFormats()[0])
}
