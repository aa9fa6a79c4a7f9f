// Package constants provides centralized constant values used throughout bwckit.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by bwckit for state persistence.
const (
	// MetadataFileName is the name of the per-subproject key=value file that
	// records the last commit built for a release line. The name is fixed;
	// downstream tooling greps for it.
	MetadataFileName = "build_metadata"

	// RegistryFileName is the name of the JSON file that records registered
	// distribution artifacts under the bwc home directory.
	RegistryFileName = "artifacts.json"

	// RunFileName is the name of the JSON file that stores a single pipeline
	// run record within the runs directory.
	RunFileName = "run.json"
)

// Directory names and paths used by bwckit for organizing data.
const (
	// BwcHome is the hidden directory name where bwckit stores all its data.
	// This directory is created in the user's home directory.
	BwcHome = ".bwc"

	// CheckoutsDir is the directory name where per-subproject clones of the
	// root repository live. Checkouts are reused across runs; there is no
	// eviction.
	CheckoutsDir = "checkouts"

	// BuildDir is the directory name, relative to the project root, under
	// which per-subproject metadata files are written
	// (build/<subproject>/build_metadata).
	BuildDir = "build"

	// RunsDir is the directory name where pipeline run records are stored.
	RunsDir = "runs"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// DefaultBuildParallelism is how many subproject pipelines run at once
// unless configured otherwise. Each pipeline spawns a full gradle build,
// so the default stays low.
const DefaultBuildParallelism = 2

// Timeout configurations. Child git and gradle processes deliberately run
// without a deadline; a bwc build can legitimately take hours and the only
// stop is signal-driven context cancellation.
const (
	// DefaultLockTimeout is the maximum duration to wait for the metadata
	// store or registry file lock before giving up.
	DefaultLockTimeout = 10 * time.Second

	// LockRetryInterval is the polling interval while waiting for a file lock.
	LockRetryInterval = 50 * time.Millisecond
)

// Schema version constants for data migration support.
const (
	// RunSchemaVersion is the current version of the run record JSON schema.
	// This enables forward-compatible schema migrations.
	RunSchemaVersion = "1.0"

	// RegistrySchemaVersion is the current version of the artifact registry
	// JSON schema.
	RegistrySchemaVersion = "1.0"
)
