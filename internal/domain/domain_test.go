package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/bwckit/internal/constants"
)

func TestSubproject_Path(t *testing.T) {
	tests := []struct {
		name     string
		sub      string
		expected string
	}{
		{
			name:     "release line",
			sub:      "5.6",
			expected: ":distribution:bwc:5.6",
		},
		{
			name:     "staged minor",
			sub:      "6.2",
			expected: ":distribution:bwc:6.2",
		},
		{
			name:     "rolling sentinel",
			sub:      "next-minor-snapshot",
			expected: ":distribution:bwc:next-minor-snapshot",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NewSubproject(tc.sub).Path())
		})
	}
}

func TestSubproject_MetadataKey(t *testing.T) {
	// The key format is load-bearing: it is written verbatim into
	// build_metadata files that other tooling reads back.
	sub := NewSubproject("5.6")
	assert.Equal(t, "bwc_refspec_:distribution:bwc:5.6", sub.MetadataKey())
}

func TestSubproject_IsRolling(t *testing.T) {
	assert.True(t, NewSubproject("next-minor-snapshot").IsRolling())
	assert.False(t, NewSubproject("5.6").IsRolling())
	assert.False(t, NewSubproject("next-minor").IsRolling())
}

func TestParseSubproject(t *testing.T) {
	tests := []struct {
		name     string
		arg      string
		expected string
	}{
		{
			name:     "bare name",
			arg:      "5.6",
			expected: "5.6",
		},
		{
			name:     "full colon path",
			arg:      ":distribution:bwc:5.6",
			expected: "5.6",
		},
		{
			name:     "rolling path",
			arg:      ":distribution:bwc:next-minor-snapshot",
			expected: "next-minor-snapshot",
		},
		{
			name:     "unrelated colon path stays intact",
			arg:      ":distribution:deb",
			expected: ":distribution:deb",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseSubproject(tc.arg).Name)
		})
	}
}

func TestRun_LastStage(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		r := &Run{}
		assert.Nil(t, r.LastStage())
	})

	t.Run("returns most recent", func(t *testing.T) {
		r := &Run{
			Stages: []StageResult{
				{Stage: StageCloned, Success: true},
				{Stage: StageFetched, Success: true, Skipped: true},
			},
		}
		last := r.LastStage()
		require.NotNil(t, last)
		assert.Equal(t, StageFetched, last.Stage)
		assert.True(t, last.Skipped)
	})
}

func TestRun_Succeeded(t *testing.T) {
	assert.True(t, (&Run{Stage: StageVerified}).Succeeded())
	assert.False(t, (&Run{Stage: StageFailed}).Succeeded())
	assert.False(t, (&Run{Stage: StageBuilt}).Succeeded())
}

func TestRun_JSONRoundTrip(t *testing.T) {
	completed := time.Date(2026, 8, 25, 10, 41, 12, 0, time.UTC)
	original := Run{
		ID:          "run-20260825-100000",
		Subproject:  "5.6",
		Version:     "5.6.17-SNAPSHOT",
		Branch:      "5.6",
		Refspec:     "elastic/5.6",
		Commit:      "9f2d1c7aa11",
		CheckoutDir: "/tmp/checkouts/5.6",
		Stage:       StageVerified,
		Stages: []StageResult{
			{Stage: StageCloned, Success: true, Skipped: true, CompletedAt: completed},
			{Stage: StageVerified, Success: true, Duration: 3 * time.Second, CompletedAt: completed},
		},
		Artifacts: []string{
			"/tmp/checkouts/5.6/distribution/deb/build/distributions/elasticsearch-5.6.17-SNAPSHOT.deb",
		},
		CreatedAt:     completed.Add(-41 * time.Minute),
		UpdatedAt:     completed,
		CompletedAt:   &completed,
		SchemaVersion: constants.RunSchemaVersion,
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	// Field names are snake_case on the wire
	assert.Contains(t, string(data), `"checkout_dir"`)
	assert.Contains(t, string(data), `"schema_version":"1.0"`)

	var decoded Run
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Stage, decoded.Stage)
	assert.Len(t, decoded.Stages, 2)
	assert.Equal(t, original.Artifacts, decoded.Artifacts)
	require.NotNil(t, decoded.CompletedAt)
	assert.True(t, decoded.CompletedAt.Equal(completed))
}
