// Package pipeline drives the per-subproject bwc build: clone, remote
// setup, fetch, checkout, metadata recording, the delegated distribution
// build, and artifact verification.
//
// This file implements the run state machine, which enforces the linear
// stage order and the absence of retry or rollback edges.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors,
//     internal/git, internal/gradle, internal/metadata, internal/artifact,
//     internal/version, internal/clock, internal/flock, std lib
//   - MUST NOT import: internal/config, internal/cli
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/domain"
	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

// ValidTransitions defines all allowed stage transitions in the run
// lifecycle. Format: from_stage -> []to_stages
//
// The state machine is a straight line with a single escape hatch:
//
//	Pending → Cloned → RemoteEnsured → Fetched → CheckedOut →
//	MetadataWritten → Built → Verified
//
// and every non-terminal stage may move to Failed. There are no retry or
// rollback edges; a failed run is rerun from scratch (the checkout itself
// survives and is reused).
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.Stage][]constants.Stage{
	constants.StagePending:         {constants.StageCloned, constants.StageFailed},
	constants.StageCloned:          {constants.StageRemoteEnsured, constants.StageFailed},
	constants.StageRemoteEnsured:   {constants.StageFetched, constants.StageFailed},
	constants.StageFetched:         {constants.StageCheckedOut, constants.StageFailed},
	constants.StageCheckedOut:      {constants.StageMetadataWritten, constants.StageFailed},
	constants.StageMetadataWritten: {constants.StageBuilt, constants.StageFailed},
	constants.StageBuilt:           {constants.StageVerified, constants.StageFailed},
}

// IsValidTransition checks if a transition from one stage to another is
// allowed. Returns false for transitions from terminal stages or to the
// same stage.
func IsValidTransition(from, to constants.Stage) bool {
	if from == to {
		return false
	}

	validTargets, exists := ValidTransitions[from]
	if !exists {
		return false // Terminal stage or unknown stage
	}
	for _, target := range validTargets {
		if target == to {
			return true
		}
	}
	return false
}

// NextStage returns the single forward successor of a stage, or false for
// terminal stages. Failed is never a forward successor.
func NextStage(from constants.Stage) (constants.Stage, bool) {
	targets, exists := ValidTransitions[from]
	if !exists {
		return "", false
	}
	return targets[0], true
}

// Transition validates and applies a stage transition to the run, updating
// timestamps from the supplied now. The caller is responsible for
// persisting the updated run.
func Transition(ctx context.Context, run *domain.Run, to constants.Stage, now time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if run == nil {
		return fmt.Errorf("%w: run is nil", bwcerrors.ErrInvalidTransition)
	}

	from := run.Stage
	if !IsValidTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s",
			bwcerrors.ErrInvalidTransition, from, to)
	}

	run.Stage = to
	run.UpdatedAt = now

	if to.IsTerminal() {
		run.CompletedAt = &now
	}

	return nil
}
