// Package domain provides shared domain types for the bwckit build orchestrator.
package domain

import "github.com/mrz1836/bwckit/internal/constants"

// Re-export Stage and PackageFormat from the constants package.
// This allows consumers to import domain types and stage types together,
// providing a unified API for working with bwckit domain objects.
//
// Example usage:
//
//	import "github.com/mrz1836/bwckit/internal/domain"
//
//	run := domain.Run{
//	    Stage: domain.StagePending,
//	}
type (
	// Stage represents the state of a pipeline run in the bwckit state machine.
	Stage = constants.Stage

	// PackageFormat identifies one of the distribution package types.
	PackageFormat = constants.PackageFormat
)

// Re-export Stage constants for convenience.
// These mirror the values in internal/constants/stage.go.
const (
	// StagePending indicates a run is created but no work has started.
	StagePending = constants.StagePending

	// StageCloned indicates the checkout directory exists.
	StageCloned = constants.StageCloned

	// StageRemoteEnsured indicates the upstream remote is present.
	StageRemoteEnsured = constants.StageRemoteEnsured

	// StageFetched indicates refs were fetched, or fetching was skipped offline.
	StageFetched = constants.StageFetched

	// StageCheckedOut indicates the resolved refspec has been checked out.
	StageCheckedOut = constants.StageCheckedOut

	// StageMetadataWritten indicates the commit hash has been persisted.
	StageMetadataWritten = constants.StageMetadataWritten

	// StageBuilt indicates the delegated gradle build process has exited.
	StageBuilt = constants.StageBuilt

	// StageVerified indicates all expected artifacts exist. Terminal success.
	StageVerified = constants.StageVerified

	// StageFailed indicates the run stopped with an error. Terminal.
	StageFailed = constants.StageFailed
)

// Re-export PackageFormat constants for convenience.
// These mirror the values in internal/constants/stage.go.
const (
	// FormatDeb is the Debian package distribution.
	FormatDeb = constants.FormatDeb

	// FormatRPM is the RPM package distribution.
	FormatRPM = constants.FormatRPM

	// FormatZip is the zip archive distribution.
	FormatZip = constants.FormatZip
)
