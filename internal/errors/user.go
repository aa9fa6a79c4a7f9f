package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// This single source of truth ensures UserMessage and Actionable stay in sync.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Git Operations
	// ===================
	{
		err: ErrGitOperation,
		info: ErrorInfo{
			Message: "Git operation failed. Check the checkout state and network access.",
			Action:  "Inspect the checkout directory and retry, or remove it to force a fresh clone.",
		},
	},
	{
		err: ErrNotGitRepo,
		info: ErrorInfo{
			Message: "Not inside a git repository.",
			Action:  "Run bwc from inside the project checkout.",
		},
	},
	{
		err: ErrRevParseFailed,
		info: ErrorInfo{
			Message: "The refspec could not be resolved to a commit.",
			Action:  "Check the refspec override and ensure the branch exists on the remote.",
		},
	},

	// ===================
	// Build & Artifacts
	// ===================
	{
		err: ErrGradleBuild,
		info: ErrorInfo{
			Message: "The delegated gradle build failed. Check the build output above.",
			Action:  "Run again with --stacktrace for the failure location in the checkout.",
		},
	},
	{
		err: ErrArtifactMissing,
		info: ErrorInfo{
			Message: "The build finished but expected distribution artifacts are missing.",
			Action:  "Inspect the checkout's distribution/ directories for partial output.",
		},
	},
	{
		err: ErrGradleNotFound,
		info: ErrorInfo{
			Message: "No gradle wrapper was found in the checkout.",
			Action:  "Verify the checked-out branch contains a gradlew script at its root.",
		},
	},
	{
		err: ErrLegacyJavaHome,
		info: ErrorInfo{
			Message: "This branch needs a legacy JDK but no JAVA_HOME override is configured.",
			Action:  "Set build.runtime_java_home in the config to a JDK 8 installation.",
		},
	},

	// ===================
	// Versions & Runs
	// ===================
	{
		err: ErrNoVersions,
		info: ErrorInfo{
			Message: "No backward compatibility versions are configured.",
			Action:  "Add versions to bwcversions.yaml or check the config search path.",
		},
	},
	{
		err: ErrUnknownSubproject,
		info: ErrorInfo{
			Message: "The named subproject does not match any configured version.",
			Action:  "Run 'bwc versions' to list the configured subprojects.",
		},
	},
	{
		err: ErrInvalidVersion,
		info: ErrorInfo{
			Message: "A version string could not be parsed.",
			Action:  "Versions must look like '5.6.2' or '5.6.2-SNAPSHOT'.",
		},
	},
	{
		err: ErrInvalidRefspec,
		info: ErrorInfo{
			Message: "A refspec override was malformed.",
			Action:  "Use the form --refspec <subproject>=<ref>, e.g. --refspec 5.6=elastic/5.6.",
		},
	},
	{
		err: ErrRunNotFound,
		info: ErrorInfo{
			Message: "The requested build run does not exist.",
			Action:  "Run 'bwc status' to list known runs.",
		},
	},
	{
		err: ErrInvalidTransition,
		info: ErrorInfo{
			Message: "The build run is not in a stage that allows this operation.",
			Action:  "Check the run's current stage with 'bwc status'.",
		},
	},

	// ===================
	// Metadata & Registry
	// ===================
	{
		err: ErrMetadataCorrupted,
		info: ErrorInfo{
			Message: "The build metadata file is corrupted or unreadable.",
			Action:  "Delete the build_metadata file under build/ and rebuild.",
		},
	},
	{
		err: ErrRegistryCorrupted,
		info: ErrorInfo{
			Message: "The artifact registry is corrupted or unreadable.",
			Action:  "Delete the registry file under the bwc home directory and rebuild.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Could not acquire a file lock. Another bwc process may be running.",
			Action:  "Wait for the other process to finish, or remove a stale .lock file.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNotFound,
		info: ErrorInfo{
			Message: "The configuration file was not found.",
			Action:  "Create .bwc/config.yaml in the project or ~/.bwc/config.yaml globally.",
		},
	},
	{
		err: ErrConfigInvalidGit,
		info: ErrorInfo{
			Message: "The Git configuration is invalid.",
			Action:  "Check the git section of the config for empty or malformed values.",
		},
	},
	{
		err: ErrConfigInvalidBuild,
		info: ErrorInfo{
			Message: "The Build configuration is invalid.",
			Action:  "Check the build section of the config for empty or malformed values.",
		},
	},
	{
		err: ErrConfigInvalidVersions,
		info: ErrorInfo{
			Message: "The Versions configuration is invalid.",
			Action:  "Check bwcversions.yaml for malformed version strings.",
		},
	},

	// ===================
	// CLI
	// ===================
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "An invalid output format was specified.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrMutuallyExclusiveFlags,
		info: ErrorInfo{
			Message: "Conflicting flags were provided together.",
			Action:  "Check the command help for valid flag combinations.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
// Built once from errorInfoEntries during package initialization.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates a map from the errorInfoEntries slice.
// This is called once during package init for O(1) direct lookups.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries O(1) direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	// Fast path: O(1) lookup for direct sentinel errors
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Slow path: errors.Is() for wrapped errors
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// This function maps sentinel errors to helpful, actionable messages
// that are suitable for display to end users.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that are not recoverable or have no clear action, the action
// string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
