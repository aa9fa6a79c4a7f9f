package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/bwckit/internal/errors"
)

// newViperInstance creates a Viper instance with the standard bwckit
// configuration: defaults, BWC_ environment prefix, and key replacer.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("BWC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults configures all default values on the Viper instance.
// These match DefaultConfig(); keys must match the YAML tag names exactly.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("git.remote", defaults.Git.Remote)
	v.SetDefault("git.repo_url", defaults.Git.RepoURL)

	v.SetDefault("build.checkout_dir", defaults.Build.CheckoutDir)
	v.SetDefault("build.parallelism", defaults.Build.Parallelism)
	v.SetDefault("build.stacktrace", defaults.Build.Stacktrace)
	v.SetDefault("build.offline", defaults.Build.Offline)
	v.SetDefault("build.host_runtime_legacy", defaults.Build.HostRuntimeLegacy)
	v.SetDefault("build.runtime_java_home", defaults.Build.RuntimeJavaHome)
	v.SetDefault("build.lock_timeout", defaults.Build.LockTimeout.String())

	v.SetDefault("versions", map[string]string{})
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// mapstructure converts "10s" style strings into time.Duration.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// isConfigNotFoundError reports whether err is viper's missing-file error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// unmarshalAndValidate unmarshals the viper state into a Config and
// validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper
// precedence: environment variables over project config over global config
// over defaults. For CLI flag overrides use LoadWithOverrides.
//
// Missing config files are not errors; many installs run on defaults plus
// a bwcversions.yaml manifest alone.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("git.remote", cfg.Git.Remote).
		Int("build.parallelism", cfg.Build.Parallelism).
		Dur("build.lock_timeout", cfg.Build.LockTimeout).
		Int("versions", len(cfg.Versions)).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// loadGlobalConfig reads ~/.bwc/config.yaml into v when present. A missing
// file or undeterminable home directory is skipped silently.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return nil //nolint:nilerr // no home directory means no global config
	}
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig merges .bwc/config.yaml from the working directory
// into v when present.
func loadProjectConfig(v *viper.Viper) error {
	path := ProjectConfigPath()
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadFromPaths loads configuration from explicit file paths, bypassing
// the default lookup. Used by tests and by callers that already resolved
// the project root. Either path can be empty to skip that layer;
// projectConfigPath merges over globalConfigPath.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// LoadWithOverrides loads configuration and applies CLI flag overrides,
// which have the highest precedence. Only non-zero override values are
// applied, so partial overrides work.
//
// Boolean fields (Offline, HostRuntimeLegacy) cannot be overridden here
// because false is indistinguishable from unset; the CLI applies those
// from cobra's Changed() directly.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// applyOverrides merges non-zero override values into cfg.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Git.Remote != "" {
		cfg.Git.Remote = overrides.Git.Remote
	}
	if overrides.Git.RepoURL != "" {
		cfg.Git.RepoURL = overrides.Git.RepoURL
	}

	if overrides.Build.CheckoutDir != "" {
		cfg.Build.CheckoutDir = overrides.Build.CheckoutDir
	}
	if overrides.Build.Parallelism != 0 {
		cfg.Build.Parallelism = overrides.Build.Parallelism
	}
	if overrides.Build.Stacktrace != "" {
		cfg.Build.Stacktrace = overrides.Build.Stacktrace
	}
	if overrides.Build.RuntimeJavaHome != "" {
		cfg.Build.RuntimeJavaHome = overrides.Build.RuntimeJavaHome
	}
	if overrides.Build.LockTimeout != 0 {
		cfg.Build.LockTimeout = overrides.Build.LockTimeout
	}

	cfg.Versions = mergeStringMaps(cfg.Versions, overrides.Versions)
}

// mergeStringMaps merges src into dst key by key, creating dst if nil.
func mergeStringMaps(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
