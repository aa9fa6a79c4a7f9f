// Package errors provides centralized error handling for bwckit.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrGitOperation indicates that a git command (clone, fetch, checkout, etc.)
	// failed during execution.
	ErrGitOperation = errors.New("git operation failed")

	// ErrNotGitRepo indicates that a path expected to hold a git checkout
	// does not contain one.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrRevParseFailed indicates that a refspec could not be resolved to a
	// commit hash in the checkout.
	ErrRevParseFailed = errors.New("refspec resolution failed")

	// ErrGradleBuild indicates that the delegated gradle distribution build
	// exited with a non-zero status.
	ErrGradleBuild = errors.New("gradle build failed")

	// ErrGradleNotFound indicates that the checkout has no gradle wrapper
	// to delegate the build to.
	ErrGradleNotFound = errors.New("gradle wrapper not found")

	// ErrArtifactMissing indicates that one or more expected distribution
	// artifacts were absent after the build completed.
	ErrArtifactMissing = errors.New("expected artifact missing")

	// ErrInvalidTransition indicates an attempt to move a build run to a
	// stage that is not reachable from its current stage.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrRunNotFound indicates the requested build run does not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunExists indicates a build run with the same ID already exists.
	ErrRunExists = errors.New("run already exists")

	// ErrPipelineFailed indicates at least one subproject pipeline failed.
	// Individual failures are recorded on their runs; this aggregate names
	// the failed subprojects.
	ErrPipelineFailed = errors.New("one or more subproject pipelines failed")

	// ErrNoVersions indicates that no backward compatibility versions are
	// configured, so there is nothing to build.
	ErrNoVersions = errors.New("no bwc versions configured")

	// ErrUnknownSubproject indicates that a named subproject does not match
	// any configured bwc version.
	ErrUnknownSubproject = errors.New("unknown bwc subproject")

	// ErrInvalidVersion indicates that a version string could not be parsed.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidRefspec indicates a malformed refspec override mapping.
	ErrInvalidRefspec = errors.New("invalid refspec mapping")

	// ErrMetadataCorrupted indicates the build metadata file is corrupted
	// or unreadable.
	ErrMetadataCorrupted = errors.New("build metadata corrupted")

	// ErrRegistryCorrupted indicates the artifact registry file is corrupted
	// or unreadable.
	ErrRegistryCorrupted = errors.New("artifact registry corrupted")

	// ErrLockTimeout indicates a file lock could not be acquired within the
	// timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrLegacyJavaHome indicates that a pre-6.2 branch requires an explicit
	// legacy JAVA_HOME but none is configured.
	ErrLegacyJavaHome = errors.New("legacy java home not configured")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigNotFound indicates that the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalidGit indicates an invalid Git configuration value.
	ErrConfigInvalidGit = errors.New("invalid Git configuration")

	// ErrConfigInvalidBuild indicates an invalid Build configuration value.
	ErrConfigInvalidBuild = errors.New("invalid Build configuration")

	// ErrConfigInvalidVersions indicates an invalid Versions configuration value.
	ErrConfigInvalidVersions = errors.New("invalid Versions configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrCommandNotConfigured indicates that a mock command was not configured in tests.
	ErrCommandNotConfigured = errors.New("command not configured")

	// ErrCommandFailed indicates that a command execution failed.
	ErrCommandFailed = errors.New("command failed")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidDuration indicates that a duration format is invalid.
	ErrInvalidDuration = errors.New("invalid duration format")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMutuallyExclusiveFlags indicates conflicting flags were provided together.
	ErrMutuallyExclusiveFlags = errors.New("flags are mutually exclusive")
)
