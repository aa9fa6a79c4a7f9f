package config

import (
	"github.com/mrz1836/bwckit/internal/constants"
)

// DefaultConfig returns a new Config with the built-in default values.
// These defaults are the base layer that config files, environment
// variables, and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Git: GitConfig{
			// Remote: the canonical upstream for release branches. The
			// name is also what the URL is derived from, so overriding it
			// points at a fork.
			Remote: "elastic",

			// RepoURL: empty means clone the enclosing checkout itself.
			RepoURL: "",
		},
		Build: BuildConfig{
			// CheckoutDir: empty means derive <project>/build/checkouts at
			// wiring time.
			CheckoutDir: "",

			// Parallelism: each pipeline runs a full distribution build,
			// so two at a time is plenty for most machines.
			Parallelism: constants.DefaultBuildParallelism,

			// Stacktrace: short stacktraces give actionable failures
			// without drowning the log.
			Stacktrace: "stacktrace",

			Offline:           false,
			HostRuntimeLegacy: false,
			RuntimeJavaHome:   "",

			// LockTimeout: metadata/registry writes are small; ten
			// seconds of lock contention means something is wedged.
			LockTimeout: constants.DefaultLockTimeout,
		},

		// Versions: empty by default. Projects supply their map via the
		// versions section or a bwcversions.yaml file.
		Versions: nil,
	}
}
