package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/bwckit/internal/artifact"
	"github.com/mrz1836/bwckit/internal/config"
	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/domain"
	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
	"github.com/mrz1836/bwckit/internal/git"
	"github.com/mrz1836/bwckit/internal/gradle"
	"github.com/mrz1836/bwckit/internal/metadata"
	"github.com/mrz1836/bwckit/internal/pipeline"
	"github.com/mrz1836/bwckit/internal/version"
)

// findProjectRoot locates the top of the enclosing git checkout. Every bwc
// command works relative to it: clones source from it, metadata lives under
// its build/ tree, and the config search starts there.
func findProjectRoot(ctx context.Context) (string, error) {
	root, err := git.RunCommand(ctx, ".", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %s", bwcerrors.ErrNotGitRepo, err)
	}
	return root, nil
}

// loadProjectConfig loads the layered configuration anchored at the project
// root and merges the bwcversions.yaml manifest on top of the versions map.
func loadProjectConfig(ctx context.Context, projectRoot string) (*config.Config, error) {
	globalPath, err := config.GlobalConfigPath()
	if err != nil {
		// No resolvable home directory; project and defaults still apply.
		globalPath = ""
	}

	cfg, err := config.LoadFromPaths(ctx, filepath.Join(projectRoot, config.ProjectConfigPath()), globalPath)
	if err != nil {
		return nil, err
	}

	if err := config.MergeVersionsFile(cfg, projectRoot); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("project_root", projectRoot).
		Str("remote", cfg.Git.Remote).
		Int("versions", len(cfg.Versions)).
		Msg("config loaded")

	return cfg, nil
}

// parseVersions converts the config's raw version strings to the typed map
// the engine consumes. Subprojects are checked in name order so a parse
// failure is deterministic.
func parseVersions(raw map[string]string) (map[string]version.Version, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	versions := make(map[string]version.Version, len(raw))
	for _, name := range names {
		v, err := version.Parse(raw[name])
		if err != nil {
			return nil, bwcerrors.Wrapf(err, "subproject %s", name)
		}
		versions[name] = v
	}
	return versions, nil
}

// parseRefspecOverrides turns repeated --refspec sub=ref flags into the
// override map. Both sides of the mapping must be non-empty.
func parseRefspecOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, ref, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(name) == "" || strings.TrimSpace(ref) == "" {
			return nil, fmt.Errorf("%w: %q (expected <subproject>=<ref>)", bwcerrors.ErrInvalidRefspec, pair)
		}
		sub := domain.ParseSubproject(strings.TrimSpace(name))
		overrides[sub.Name] = strings.TrimSpace(ref)
	}
	return overrides, nil
}

// refspecEnvKey returns the environment variable that can pin a
// subproject's refspec: the upper-cased name with dots and hyphens folded
// to underscores, so "5.6" reads BWC_REFSPEC_5_6 and "next-minor-snapshot"
// reads BWC_REFSPEC_NEXT_MINOR_SNAPSHOT.
func refspecEnvKey(name string) string {
	folded := strings.NewReplacer(".", "_", "-", "_").Replace(name)
	return "BWC_REFSPEC_" + strings.ToUpper(folded)
}

// envRefspecOverrides collects refspec pins from the environment, one
// optional BWC_REFSPEC_<NAME> variable per configured subproject.
func envRefspecOverrides(versions map[string]string) map[string]string {
	var overrides map[string]string
	for name := range versions {
		ref, ok := os.LookupEnv(refspecEnvKey(name))
		if !ok || strings.TrimSpace(ref) == "" {
			continue
		}
		if overrides == nil {
			overrides = make(map[string]string)
		}
		overrides[name] = strings.TrimSpace(ref)
	}
	return overrides
}

// mergeRefspecOverrides overlays flag overrides on environment ones; an
// explicit --refspec wins over the variable for the same subproject.
func mergeRefspecOverrides(env, flags map[string]string) map[string]string {
	if len(env) == 0 {
		return flags
	}
	merged := make(map[string]string, len(env)+len(flags))
	for name, ref := range env {
		merged[name] = ref
	}
	for name, ref := range flags {
		merged[name] = ref
	}
	return merged
}

// stacktraceMode maps the config's stacktrace string onto the delegated
// build's flag. Validation has already rejected anything else; an unknown
// value falls back to the default.
func stacktraceMode(s string) gradle.StacktraceMode {
	switch s {
	case "none":
		return gradle.StacktraceNone
	case "full":
		return gradle.StacktraceFull
	default:
		return gradle.StacktraceShort
	}
}

// engineSettings assembles the pipeline settings from the effective config.
// Empty clone source and checkouts root fall back to the project checkout
// itself and its build tree.
func engineSettings(cfg *config.Config, projectRoot string, level zerolog.Level, refspecOverrides map[string]string) pipeline.Settings {
	repoURL := cfg.Git.RepoURL
	if repoURL == "" {
		repoURL = projectRoot
	}

	checkoutsRoot := cfg.Build.CheckoutDir
	if checkoutsRoot == "" {
		checkoutsRoot = filepath.Join(projectRoot, constants.BuildDir, constants.CheckoutsDir)
	}

	return pipeline.Settings{
		RepoURL:           repoURL,
		ProjectRoot:       projectRoot,
		CheckoutsRoot:     checkoutsRoot,
		RemoteName:        cfg.Git.Remote,
		Offline:           cfg.Build.Offline,
		RefspecOverrides:  refspecOverrides,
		LogLevel:          level,
		Stacktrace:        stacktraceMode(cfg.Build.Stacktrace),
		HostRuntimeLegacy: cfg.Build.HostRuntimeLegacy,
		RuntimeJavaHome:   cfg.Build.RuntimeJavaHome,
		Parallelism:       cfg.Build.Parallelism,
	}
}

// newEngine wires the stores and the pipeline engine for one invocation.
// liveOutput, when non-nil, streams delegated build output as it is
// produced instead of only capturing it.
func newEngine(cfg *config.Config, projectRoot string, settings pipeline.Settings, liveOutput io.Writer) (*pipeline.Engine, error) {
	versions, err := parseVersions(cfg.Versions)
	if err != nil {
		return nil, err
	}

	meta, err := metadata.NewStore(projectRoot, metadata.WithLockTimeout(cfg.Build.LockTimeout))
	if err != nil {
		return nil, err
	}

	// Registry and run records share the bwc home with the CLI log, so a
	// BWC_HOME override moves all of them together.
	bwcHome, err := getBwcHome()
	if err != nil {
		return nil, err
	}

	registry, err := artifact.NewRegistry(bwcHome, artifact.WithLockTimeout(cfg.Build.LockTimeout))
	if err != nil {
		return nil, err
	}

	runs, err := pipeline.NewFileStore(bwcHome)
	if err != nil {
		return nil, err
	}

	opts := make([]pipeline.EngineOption, 0, 1)
	if liveOutput != nil {
		builder := gradle.NewBuilder()
		builder.SetLiveOutput(liveOutput)
		opts = append(opts, pipeline.WithAssembler(builder))
	}

	return pipeline.NewEngine(settings, versions, meta, registry, runs, opts...)
}

// selectSubprojects resolves the positional arguments to the build set.
// No arguments means every subproject with a mapped version; named
// subprojects must exist in the version map. Names may be given bare
// ("5.6") or as full paths (":distribution:bwc:5.6").
func selectSubprojects(engine *pipeline.Engine, args []string) ([]domain.Subproject, error) {
	if len(args) == 0 {
		subs := engine.Subprojects()
		if len(subs) == 0 {
			return nil, bwcerrors.ErrNoVersions
		}
		return subs, nil
	}

	subs := make([]domain.Subproject, 0, len(args))
	seen := make(map[string]struct{}, len(args))
	for _, arg := range args {
		sub := domain.ParseSubproject(arg)
		if _, ok := engine.VersionFor(sub); !ok {
			return nil, fmt.Errorf("%w: %s", bwcerrors.ErrUnknownSubproject, sub.Name)
		}
		if _, dup := seen[sub.Name]; dup {
			continue
		}
		seen[sub.Name] = struct{}{}
		subs = append(subs, sub)
	}
	return subs, nil
}
