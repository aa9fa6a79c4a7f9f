// Package config provides configuration management for bwckit with layered
// precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (BWC_* prefix)
//  3. Project config (.bwc/config.yaml)
//  4. Global config (~/.bwc/config.yaml)
//  5. Built-in defaults
//
// The subproject → version map additionally honors a bwcversions.yaml file
// at the project root, which overrides the versions section key by key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for bwckit.
type Config struct {
	// Git contains settings for the clone/fetch/checkout side of a run.
	Git GitConfig `yaml:"git" mapstructure:"git"`

	// Build contains settings for the delegated distribution build.
	Build BuildConfig `yaml:"build" mapstructure:"build"`

	// Versions maps bwc subproject names to the release version each one
	// builds, e.g. "5.6" → "5.6.17-SNAPSHOT". A subproject missing from
	// the map is a pipeline no-op, not an error.
	Versions map[string]string `yaml:"versions" mapstructure:"versions"`
}

// GitConfig contains settings for git operations.
type GitConfig struct {
	// Remote is the name of the upstream remote ensured in every checkout.
	// The remote URL is derived from the name
	// (https://github.com/{name}/elasticsearch.git).
	// Default: "elastic"
	Remote string `yaml:"remote" mapstructure:"remote"`

	// RepoURL is the clone source for scratch checkouts. Empty means clone
	// the enclosing project checkout itself, which is the normal mode: the
	// local clone already has most objects the release branches need.
	RepoURL string `yaml:"repo_url,omitempty" mapstructure:"repo_url"`
}

// BuildConfig contains settings for the delegated distribution build.
type BuildConfig struct {
	// CheckoutDir is the root directory for per-subproject scratch clones.
	// Empty means <project>/build/checkouts.
	CheckoutDir string `yaml:"checkout_dir,omitempty" mapstructure:"checkout_dir"`

	// Parallelism is how many subproject pipelines run concurrently.
	// Default: 2, Valid range: 1-16
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism"`

	// Stacktrace selects the failure detail flag passed to the delegated
	// build. Valid values: "none", "stacktrace", "full".
	// Default: "stacktrace"
	Stacktrace string `yaml:"stacktrace" mapstructure:"stacktrace"`

	// Offline skips the fetch stage entirely; checkouts build whatever
	// refs they already have.
	// Default: false
	Offline bool `yaml:"offline" mapstructure:"offline"`

	// HostRuntimeLegacy marks the host JVM as a legacy runtime. Release
	// lines that predate the modern toolchain (5.6, 6.0, 6.1) then get
	// RuntimeJavaHome as their JAVA_HOME.
	// Default: false
	HostRuntimeLegacy bool `yaml:"host_runtime_legacy" mapstructure:"host_runtime_legacy"`

	// RuntimeJavaHome is the JAVA_HOME handed to legacy release lines when
	// HostRuntimeLegacy is set. Also settable via BWC_BUILD_RUNTIME_JAVA_HOME.
	RuntimeJavaHome string `yaml:"runtime_java_home,omitempty" mapstructure:"runtime_java_home"`

	// LockTimeout is how long metadata and registry writers wait for their
	// file locks before giving up. Concurrent pipelines contend on these.
	// Default: 10s
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout"`
}
