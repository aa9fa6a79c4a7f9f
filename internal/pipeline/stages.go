package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/bwckit/internal/artifact"
	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/git"
	"github.com/mrz1836/bwckit/internal/gradle"
)

// clone creates the scratch checkout. A directory that already exists is
// reused as-is, whatever its state: stale checkouts are a deliberate cache
// (re-cloning is expensive, switching refs is cheap) and there is no
// eviction.
func (e *Engine) clone(ctx context.Context, st *runState) (string, bool, error) {
	if st.runner.Exists() {
		return "checkout already exists, reusing", true, nil
	}
	if err := st.runner.Clone(ctx, e.settings.RepoURL); err != nil {
		return "", false, err
	}
	return "cloned " + e.settings.RepoURL, false, nil
}

// ensureRemote registers the upstream remote when the remote listing does
// not already carry it. The presence scan is the documented substring
// match in git.Remote.Listed.
func (e *Engine) ensureRemote(ctx context.Context, st *runState) (string, bool, error) {
	remote := git.NewRemote(e.settings.RemoteName)
	listing, err := st.runner.ListRemotes(ctx)
	if err != nil {
		return "", false, err
	}
	if remote.Listed(listing) {
		return "remote " + remote.Name + " already present", true, nil
	}
	if err := st.runner.AddRemote(ctx, remote); err != nil {
		return "", false, err
	}
	return "added remote " + remote.Name + " -> " + remote.URL, false, nil
}

// fetch downloads refs from all remotes. In offline mode the fetch is not
// attempted at all and the pipeline proceeds with whatever refs the
// checkout already has.
func (e *Engine) fetch(ctx context.Context, st *runState) (string, bool, error) {
	if e.settings.Offline {
		return "offline, fetch skipped", true, nil
	}
	if err := st.runner.FetchAll(ctx); err != nil {
		return "", false, err
	}
	return "fetched all remotes", false, nil
}

// checkout resolves the refspec through the three-tier chain and switches
// the working copy to it. A failed checkout may leave the working copy
// mid-operation; recovery is git's business, not ours.
func (e *Engine) checkout(ctx context.Context, st *runState) (string, bool, error) {
	refspec, err := e.resolveRefspec(ctx, st)
	if err != nil {
		return "", false, err
	}
	st.run.Refspec = refspec

	if err := st.runner.Checkout(ctx, refspec); err != nil {
		return "", false, err
	}
	return "checked out " + refspec, false, nil
}

// recordMetadata resolves HEAD to a commit hash and persists it keyed by
// the subproject path. On a resolution failure git's own stderr is logged
// line-by-line at error level before the stage fails, so the operator sees
// the tool's diagnostics and not just our wrapper.
func (e *Engine) recordMetadata(ctx context.Context, st *runState) (string, bool, error) {
	commit, err := st.runner.HeadCommit(ctx)
	if err != nil {
		logStderrLines(ctx, err)
		return "", false, err
	}
	st.run.Commit = commit

	if err := e.meta.RecordCommit(ctx, st.sub, commit); err != nil {
		return "", false, err
	}
	return commit, false, nil
}

// build invokes the checkout's own gradle wrapper to assemble the three
// distribution packages. A completed build with a non-zero exit is carried
// in the run state, not returned as an error: verification decides.
func (e *Engine) build(ctx context.Context, st *runState) (string, bool, error) {
	inv, err := gradle.NewInvocation(st.run.CheckoutDir, gradle.Options{
		LogLevel:          e.settings.LogLevel,
		Stacktrace:        e.settings.Stacktrace,
		Branch:            st.branch,
		HostRuntimeLegacy: e.settings.HostRuntimeLegacy,
		RuntimeJavaHome:   e.settings.RuntimeJavaHome,
	})
	if err != nil {
		return "", false, err
	}

	result, err := e.builder.Assemble(ctx, inv)
	if err != nil {
		return "", false, err
	}
	st.buildResult = result
	e.saveBuildLog(ctx, st, result)
	return fmt.Sprintf("gradle exited with code %d", result.ExitCode), false, nil
}

// saveBuildLog persists the delegated build's captured output next to the
// run record. Persistence failures are logged, never returned: the artifact
// set remains the only build gate.
func (e *Engine) saveBuildLog(ctx context.Context, st *runState, result *gradle.Result) {
	output := result.Stdout
	if result.Stderr != "" {
		if output != "" && !strings.HasSuffix(output, "\n") {
			output += "\n"
		}
		output += result.Stderr
	}
	if output == "" {
		return
	}

	path, err := e.runs.WriteBuildLog(ctx, st.sub.Name, st.run.ID, []byte(output))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to persist build log")
		return
	}
	st.run.BuildLog = path
}

// verify checks that all expected distribution files exist and registers
// them. It runs whenever the build process completed, regardless of exit
// status: the artifact set is the single correctness gate, and a failure
// names exactly the missing files.
func (e *Engine) verify(ctx context.Context, st *runState) (string, bool, error) {
	set, err := artifact.NewSet(st.run.CheckoutDir, st.run.Version)
	if err != nil {
		return "", false, err
	}
	if err := set.Verify(); err != nil {
		return "", false, err
	}

	if st.buildResult != nil && !st.buildResult.Succeeded() {
		zerolog.Ctx(ctx).Warn().
			Int("exit_code", st.buildResult.ExitCode).
			Msg("gradle exited non-zero but all artifacts exist, treating build as successful")
	}

	paths := set.Paths()
	entries := make([]artifact.Entry, 0, len(paths))
	for _, format := range constants.AllFormats() {
		entries = append(entries, artifact.NewEntry(st.sub.Name, st.run.Version, format, set.Path(format), st.run.ID))
	}
	if err := e.registry.Register(ctx, artifact.DefaultConfiguration, entries...); err != nil {
		return "", false, err
	}

	st.run.Artifacts = paths
	return fmt.Sprintf("verified %d artifacts", len(paths)), false, nil
}

// resolveRefspec applies the three-tier resolution: operator override,
// persisted metadata from the previous run, computed remote default.
func (e *Engine) resolveRefspec(ctx context.Context, st *runState) (string, error) {
	persisted, _, err := e.meta.Refspec(ctx, st.sub)
	if err != nil {
		return "", err
	}
	override := e.settings.RefspecOverrides[st.sub.Name]
	return ResolveRefspec(override, persisted, DefaultRefspec(e.settings.RemoteName, st.branch)), nil
}

// logStderrLines surfaces a git command's stderr one line at a time at
// error level.
func logStderrLines(ctx context.Context, err error) {
	var cmdErr *git.CommandError
	if !errors.As(err, &cmdErr) {
		return
	}
	logger := zerolog.Ctx(ctx)
	for _, line := range cmdErr.StderrLines() {
		logger.Error().Msg(line)
	}
}
