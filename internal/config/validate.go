package config

import (
	"strings"

	"github.com/mrz1836/bwckit/internal/errors"
)

// maxParallelism caps concurrent pipelines; each one runs a full
// distribution build.
const maxParallelism = 16

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - Git remote must not be empty
//   - Build parallelism must be between 1 and 16
//   - Build stacktrace must be one of none, stacktrace, full
//   - Build lock timeout must be positive
//   - Version values must not be empty or padded
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateGitConfig(&cfg.Git); err != nil {
		return err
	}
	if err := validateBuildConfig(&cfg.Build); err != nil {
		return err
	}
	return validateVersions(cfg.Versions)
}

// validateGitConfig checks Git-specific configuration values.
func validateGitConfig(cfg *GitConfig) error {
	if strings.TrimSpace(cfg.Remote) == "" {
		return errors.Wrap(errors.ErrConfigInvalidGit,
			"git.remote must not be empty")
	}
	return nil
}

// validateBuildConfig checks Build-specific configuration values.
func validateBuildConfig(cfg *BuildConfig) error {
	if cfg.Parallelism < 1 || cfg.Parallelism > maxParallelism {
		return errors.Wrapf(errors.ErrConfigInvalidBuild,
			"build.parallelism must be between 1 and %d, got %d", maxParallelism, cfg.Parallelism)
	}

	switch cfg.Stacktrace {
	case "none", "stacktrace", "full":
	default:
		return errors.Wrapf(errors.ErrConfigInvalidBuild,
			"build.stacktrace must be none, stacktrace, or full, got %q", cfg.Stacktrace)
	}

	if cfg.LockTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBuild,
			"build.lock_timeout must be positive, got %s", cfg.LockTimeout)
	}

	return nil
}

// validateVersions checks the subproject → version map. Parsing the
// version strings is the version package's job; here we only reject
// entries that can never be valid.
func validateVersions(versions map[string]string) error {
	for name, ver := range versions {
		if strings.TrimSpace(name) == "" {
			return errors.Wrap(errors.ErrConfigInvalidVersions,
				"versions contains an empty subproject name")
		}
		if ver != strings.TrimSpace(ver) || ver == "" {
			return errors.Wrapf(errors.ErrConfigInvalidVersions,
				"version for subproject %q must be a non-empty trimmed string, got %q", name, ver)
		}
	}
	return nil
}
