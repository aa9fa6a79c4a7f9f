package constants

// Stage represents the state of a pipeline run in the bwckit state machine.
// Stage values use snake_case for JSON serialization compatibility.
type Stage string

// Stage constants define the valid states a pipeline run can be in.
// These follow the linear state machine of the build pipeline:
//
//	Pending → Cloned → RemoteEnsured → Fetched → CheckedOut →
//	MetadataWritten → Built → Verified
//
// Any non-terminal stage may also move to Failed. There are no retry or
// rollback edges; a failed run is rerun from scratch.
const (
	// StagePending indicates a run is created but no work has started.
	StagePending Stage = "pending"

	// StageCloned indicates the checkout directory exists, either freshly
	// cloned or reused from a previous run.
	StageCloned Stage = "cloned"

	// StageRemoteEnsured indicates the upstream remote is present in the
	// checkout's remote list.
	StageRemoteEnsured Stage = "remote_ensured"

	// StageFetched indicates refs were fetched from all remotes, or the
	// fetch was skipped in offline mode.
	StageFetched Stage = "fetched"

	// StageCheckedOut indicates the resolved refspec has been checked out.
	StageCheckedOut Stage = "checked_out"

	// StageMetadataWritten indicates the checked-out commit hash has been
	// resolved and persisted to the metadata store.
	StageMetadataWritten Stage = "metadata_written"

	// StageBuilt indicates the delegated gradle build process has exited.
	StageBuilt Stage = "built"

	// StageVerified indicates all expected distribution artifacts exist.
	// This is the terminal success stage.
	StageVerified Stage = "verified"

	// StageFailed indicates the run stopped with an error. Terminal.
	StageFailed Stage = "failed"
)

// String returns the string representation of the Stage.
// This implements fmt.Stringer for convenient logging and debugging.
func (s Stage) String() string {
	return string(s)
}

// IsTerminal reports whether the stage ends the run.
func (s Stage) IsTerminal() bool {
	return s == StageVerified || s == StageFailed
}

// PackageFormat identifies one of the distribution package types the
// delegated build assembles.
type PackageFormat string

// Package format constants. The set is fixed: every bwc build produces
// exactly these three, and verification checks for exactly these three.
const (
	// FormatDeb is the Debian package distribution.
	FormatDeb PackageFormat = "deb"

	// FormatRPM is the RPM package distribution.
	FormatRPM PackageFormat = "rpm"

	// FormatZip is the zip archive distribution.
	FormatZip PackageFormat = "zip"
)

// String returns the string representation of the PackageFormat.
func (f PackageFormat) String() string {
	return string(f)
}

// AllFormats returns the package formats in their stable build order.
func AllFormats() []PackageFormat {
	return []PackageFormat{FormatDeb, FormatRPM, FormatZip}
}
