package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/domain"
	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from constants.Stage
		to   constants.Stage
		want bool
	}{
		{"pending to cloned", constants.StagePending, constants.StageCloned, true},
		{"cloned to remote ensured", constants.StageCloned, constants.StageRemoteEnsured, true},
		{"remote ensured to fetched", constants.StageRemoteEnsured, constants.StageFetched, true},
		{"fetched to checked out", constants.StageFetched, constants.StageCheckedOut, true},
		{"checked out to metadata written", constants.StageCheckedOut, constants.StageMetadataWritten, true},
		{"metadata written to built", constants.StageMetadataWritten, constants.StageBuilt, true},
		{"built to verified", constants.StageBuilt, constants.StageVerified, true},
		{"any stage to failed", constants.StageCheckedOut, constants.StageFailed, true},
		{"pending to failed", constants.StagePending, constants.StageFailed, true},
		{"skip ahead rejected", constants.StagePending, constants.StageFetched, false},
		{"skip to terminal rejected", constants.StageCloned, constants.StageVerified, false},
		{"backward rejected", constants.StageFetched, constants.StageCloned, false},
		{"same stage rejected", constants.StageBuilt, constants.StageBuilt, false},
		{"verified is terminal", constants.StageVerified, constants.StageFailed, false},
		{"failed is terminal", constants.StageFailed, constants.StagePending, false},
		{"unknown stage rejected", constants.Stage("bogus"), constants.StageCloned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestNextStage(t *testing.T) {
	next, ok := NextStage(constants.StagePending)
	require.True(t, ok)
	assert.Equal(t, constants.StageCloned, next)

	next, ok = NextStage(constants.StageBuilt)
	require.True(t, ok)
	assert.Equal(t, constants.StageVerified, next)

	_, ok = NextStage(constants.StageVerified)
	assert.False(t, ok)

	_, ok = NextStage(constants.StageFailed)
	assert.False(t, ok)
}

func TestTransition(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("valid transition updates run", func(t *testing.T) {
		run := &domain.Run{ID: "run-20260825-100000", Stage: constants.StagePending}

		require.NoError(t, Transition(ctx, run, constants.StageCloned, now))
		assert.Equal(t, constants.StageCloned, run.Stage)
		assert.Equal(t, now, run.UpdatedAt)
		assert.Nil(t, run.CompletedAt)
	})

	t.Run("terminal transition sets completed at", func(t *testing.T) {
		run := &domain.Run{ID: "run-20260825-100000", Stage: constants.StageBuilt}

		require.NoError(t, Transition(ctx, run, constants.StageVerified, now))
		require.NotNil(t, run.CompletedAt)
		assert.Equal(t, now, *run.CompletedAt)
	})

	t.Run("invalid transition rejected", func(t *testing.T) {
		run := &domain.Run{ID: "run-20260825-100000", Stage: constants.StagePending}

		err := Transition(ctx, run, constants.StageBuilt, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, bwcerrors.ErrInvalidTransition)
		assert.Equal(t, constants.StagePending, run.Stage, "run must be unchanged on rejection")
	})

	t.Run("nil run rejected", func(t *testing.T) {
		err := Transition(ctx, nil, constants.StageCloned, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, bwcerrors.ErrInvalidTransition)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		run := &domain.Run{ID: "run-20260825-100000", Stage: constants.StagePending}
		err := Transition(canceled, run, constants.StageCloned, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestResolveRefspec(t *testing.T) {
	tests := []struct {
		name      string
		override  string
		persisted string
		fallback  string
		want      string
	}{
		{"override wins", "elastic/feature", "elastic/abc123", "elastic/5.6", "elastic/feature"},
		{"persisted beats fallback", "", "elastic/abc123", "elastic/5.6", "elastic/abc123"},
		{"fallback when nothing else", "", "", "elastic/5.6", "elastic/5.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRefspec(tt.override, tt.persisted, tt.fallback))
		})
	}
}

func TestDefaultRefspec(t *testing.T) {
	assert.Equal(t, "elastic/5.6", DefaultRefspec("elastic", "5.6"))
	assert.Equal(t, "upstream/8.x", DefaultRefspec("upstream", "8.x"))
}
