package constants

// Log file names and patterns.
const (
	// CLILogFileName is the name of the global CLI log file for host operations.
	// This file is located in ~/.bwc/logs/bwc.log
	CLILogFileName = "bwc.log"

	// BuildLogFileName is the name of the log file that captures delegated
	// gradle build output for a run.
	BuildLogFileName = "build.log"
)

// Log rotation settings for the global CLI log file.
const (
	// LogMaxSizeMB is the maximum size of the log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is how many rotated log files are kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is how long rotated log files are kept.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global bwckit configuration file.
	// This file is located in the bwc home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigName is the name of the project-specific configuration file.
	// This file is located in a .bwc directory under the project root.
	ProjectConfigName = "config.yaml"

	// VersionsFileName is the name of the file mapping bwc subprojects to the
	// release versions they build. Located in the project root.
	VersionsFileName = "bwcversions.yaml"
)

// Subproject naming.
const (
	// SubprojectPathPrefix is the colon-separated path prefix under which bwc
	// subprojects are addressed, mirroring the layout of the delegated build.
	// A subproject named "5.6" has the path ":distribution:bwc:5.6".
	SubprojectPathPrefix = ":distribution:bwc:"

	// RollingSubprojectName is the sentinel subproject that tracks the
	// unreleased next minor on its major's ".x" branch instead of a
	// "major.minor" release branch.
	RollingSubprojectName = "next-minor-snapshot"
)
