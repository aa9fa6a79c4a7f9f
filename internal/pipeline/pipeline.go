package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/bwckit/internal/artifact"
	"github.com/mrz1836/bwckit/internal/clock"
	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/domain"
	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
	"github.com/mrz1836/bwckit/internal/git"
	"github.com/mrz1836/bwckit/internal/gradle"
	"github.com/mrz1836/bwckit/internal/metadata"
	"github.com/mrz1836/bwckit/internal/version"
)

// Settings carries every external knob a pipeline run consumes. The
// original orchestration read these from ambient build-system state; here
// they are threaded explicitly so a run's inputs are visible at the call
// site.
type Settings struct {
	// RepoURL is the clone source for checkouts: the project's own
	// repository, as a URL or a local path (local paths make clones cheap).
	RepoURL string

	// ProjectRoot is the directory whose build/ tree holds per-subproject
	// metadata files.
	ProjectRoot string

	// CheckoutsRoot is the parent directory under which per-subproject
	// clones live, one subdirectory per subproject name.
	CheckoutsRoot string

	// RemoteName is the upstream remote ensured in each checkout.
	// Defaults to "elastic" when empty.
	RemoteName string

	// Offline skips the fetch stage entirely. A skipped fetch is policy,
	// not an error.
	Offline bool

	// RefspecOverrides maps subproject names to operator-forced refspecs,
	// taking precedence over persisted metadata and the computed default.
	RefspecOverrides map[string]string

	// LogLevel is translated to the delegated build's verbosity flag so
	// nested output matches what the operator asked for.
	LogLevel zerolog.Level

	// Stacktrace selects the delegated build's stack-trace detail flag.
	Stacktrace gradle.StacktraceMode

	// HostRuntimeLegacy marks the orchestrating process as running on the
	// legacy Java major; together with a legacy branch it triggers the
	// JAVA_HOME override for the delegated build.
	HostRuntimeLegacy bool

	// RuntimeJavaHome is the JDK handed to legacy branches' builds.
	RuntimeJavaHome string

	// Parallelism caps concurrent subproject pipelines in RunAll.
	// Values below 1 mean sequential execution.
	Parallelism int
}

// Assembler runs the delegated distribution build. Satisfied by
// *gradle.Builder; narrowed to an interface so tests can fake builds.
type Assembler interface {
	Assemble(ctx context.Context, inv gradle.Invocation) (*gradle.Result, error)
}

// RunnerFactory creates the git runner for a checkout directory. Satisfied
// by git.NewRunner; replaceable so tests can count and fake git calls.
type RunnerFactory func(checkoutDir string) (git.Runner, error)

// Engine orchestrates per-subproject pipeline runs. One Engine serves a
// whole invocation; independent subprojects may run concurrently through
// RunAll, each writing to its own checkout directory.
type Engine struct {
	settings  Settings
	versions  map[string]version.Version
	meta      *metadata.Store
	registry  *artifact.Registry
	runs      Store
	builder   Assembler
	newRunner RunnerFactory
	clk       clock.Clock
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAssembler replaces the delegated build runner (for testing).
func WithAssembler(a Assembler) EngineOption {
	return func(e *Engine) {
		e.builder = a
	}
}

// WithRunnerFactory replaces the git runner factory (for testing).
func WithRunnerFactory(f RunnerFactory) EngineOption {
	return func(e *Engine) {
		e.newRunner = f
	}
}

// WithClock replaces the engine's time source (for testing).
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clk = c
	}
}

// NewEngine creates a pipeline engine. The versions map is the external
// subproject-to-release mapping; subprojects absent from it are no-ops.
func NewEngine(settings Settings, versions map[string]version.Version, meta *metadata.Store, registry *artifact.Registry, runs Store, opts ...EngineOption) (*Engine, error) {
	if settings.RepoURL == "" {
		return nil, fmt.Errorf("failed to create engine: repo URL %w", bwcerrors.ErrEmptyValue)
	}
	if settings.ProjectRoot == "" {
		return nil, fmt.Errorf("failed to create engine: project root %w", bwcerrors.ErrEmptyValue)
	}
	if settings.CheckoutsRoot == "" {
		return nil, fmt.Errorf("failed to create engine: checkouts root %w", bwcerrors.ErrEmptyValue)
	}
	if meta == nil {
		return nil, fmt.Errorf("failed to create engine: metadata store %w", bwcerrors.ErrEmptyValue)
	}
	if registry == nil {
		return nil, fmt.Errorf("failed to create engine: artifact registry %w", bwcerrors.ErrEmptyValue)
	}
	if runs == nil {
		return nil, fmt.Errorf("failed to create engine: run store %w", bwcerrors.ErrEmptyValue)
	}
	if settings.RemoteName == "" {
		settings.RemoteName = git.DefaultRemoteName
	}

	e := &Engine{
		settings: settings,
		versions: versions,
		meta:     meta,
		registry: registry,
		runs:     runs,
		builder:  gradle.NewBuilder(),
		newRunner: func(checkoutDir string) (git.Runner, error) {
			return git.NewRunner(checkoutDir)
		},
		clk: clock.RealClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Subprojects returns every subproject with a mapped version, sorted by
// name. This is the default build set.
func (e *Engine) Subprojects() []domain.Subproject {
	names := make([]string, 0, len(e.versions))
	for name := range e.versions {
		names = append(names, name)
	}
	sort.Strings(names)

	subs := make([]domain.Subproject, len(names))
	for i, name := range names {
		subs[i] = domain.NewSubproject(name)
	}
	return subs
}

// VersionFor returns the release version mapped to a subproject.
func (e *Engine) VersionFor(sub domain.Subproject) (version.Version, bool) {
	v, ok := e.versions[sub.Name]
	return v, ok
}

// CheckoutDir returns the scratch clone path for a subproject.
func (e *Engine) CheckoutDir(sub domain.Subproject) string {
	return filepath.Join(e.settings.CheckoutsRoot, sub.Name)
}

// RunAll executes the pipelines for the given subprojects, at most
// Parallelism at a time. A failing subproject does not cancel the others;
// all runs are collected and the aggregate error names the failures.
func (e *Engine) RunAll(ctx context.Context, subs []domain.Subproject) ([]*domain.Run, error) {
	// Plain errgroup, not WithContext: one subproject's failure must not
	// cancel its siblings.
	var g errgroup.Group
	limit := e.settings.Parallelism
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	runs := make([]*domain.Run, len(subs))
	errs := make([]error, len(subs))
	for i, sub := range subs {
		g.Go(func() error {
			run, err := e.Run(ctx, sub)
			runs[i] = run
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	collected := make([]*domain.Run, 0, len(subs))
	for _, run := range runs {
		if run != nil {
			collected = append(collected, run)
		}
	}

	var failed []string
	for i, err := range errs {
		if err != nil {
			failed = append(failed, subs[i].Name)
		}
	}
	if len(failed) > 0 {
		return collected, fmt.Errorf("%w: %s", bwcerrors.ErrPipelineFailed, strings.Join(failed, ", "))
	}
	return collected, nil
}

// Run executes the full pipeline for one subproject. A subproject with no
// mapped version returns (nil, nil) without touching the filesystem or
// starting any process. The returned run is non-nil whenever work started,
// even when it failed, so callers can inspect partial state.
func (e *Engine) Run(ctx context.Context, sub domain.Subproject) (*domain.Run, error) {
	logger := zerolog.Ctx(ctx).With().Str("subproject", sub.Name).Logger()
	ctx = logger.WithContext(ctx)

	ver, ok := e.versions[sub.Name]
	if !ok {
		logger.Debug().Msg("no bwc version mapped, nothing to do")
		return nil, nil
	}

	branch := version.BranchFor(sub, ver)
	checkoutDir := e.CheckoutDir(sub)
	runner, err := e.newRunner(checkoutDir)
	if err != nil {
		return nil, bwcerrors.Wrapf(err, "failed to prepare checkout for %s", sub.Name)
	}

	now := e.clk.Now().UTC()
	run := &domain.Run{
		ID:            GenerateRunID(e.clk),
		Subproject:    sub.Name,
		Version:       ver.String(),
		Branch:        branch,
		CheckoutDir:   checkoutDir,
		Stage:         constants.StagePending,
		Offline:       e.settings.Offline,
		Stages:        make([]domain.StageResult, 0),
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: constants.RunSchemaVersion,
	}
	if err := e.runs.Create(ctx, sub.Name, run); err != nil {
		return nil, err
	}

	logger.Info().
		Str("run_id", run.ID).
		Str("version", run.Version).
		Str("branch", branch).
		Bool("offline", run.Offline).
		Msg("starting bwc pipeline")

	st := &runState{
		run:    run,
		sub:    sub,
		branch: branch,
		runner: runner,
	}
	if err := e.execute(ctx, st); err != nil {
		return run, err
	}

	logger.Info().
		Str("run_id", run.ID).
		Str("commit", run.Commit).
		Int("artifacts", len(run.Artifacts)).
		Msg("bwc pipeline complete")
	return run, nil
}

// runState carries values between the stages of one run.
type runState struct {
	run         *domain.Run
	sub         domain.Subproject
	branch      string
	runner      git.Runner
	buildResult *gradle.Result
}

// stageEntry pairs a target stage with the function that reaches it.
type stageEntry struct {
	stage constants.Stage
	fn    func(ctx context.Context, st *runState) (output string, skipped bool, err error)
}

// stages returns the pipeline in execution order. The order mirrors
// ValidTransitions; each function's postcondition is its stage name.
func (e *Engine) stages() []stageEntry {
	return []stageEntry{
		{constants.StageCloned, e.clone},
		{constants.StageRemoteEnsured, e.ensureRemote},
		{constants.StageFetched, e.fetch},
		{constants.StageCheckedOut, e.checkout},
		{constants.StageMetadataWritten, e.recordMetadata},
		{constants.StageBuilt, e.build},
		{constants.StageVerified, e.verify},
	}
}

// execute walks the run through every stage, persisting after each one.
// The first stage error short-circuits the rest; verification runs after
// the build regardless of the build's exit code because a completed build
// with a non-zero status is not an error at the build stage (the artifact
// set is the correctness gate).
func (e *Engine) execute(ctx context.Context, st *runState) error {
	logger := zerolog.Ctx(ctx)

	for _, entry := range e.stages() {
		started := e.clk.Now().UTC()
		output, skipped, stageErr := entry.fn(ctx, st)
		completed := e.clk.Now().UTC()

		result := domain.StageResult{
			Stage:       entry.stage,
			Success:     stageErr == nil,
			Skipped:     skipped,
			Output:      output,
			Duration:    completed.Sub(started),
			CompletedAt: completed,
		}
		if stageErr != nil {
			result.Error = stageErr.Error()
			st.run.Stages = append(st.run.Stages, result)
			e.markFailed(ctx, st, stageErr, completed)
			return bwcerrors.Wrapf(stageErr, "subproject %s failed at %s", st.sub.Name, entry.stage)
		}

		st.run.Stages = append(st.run.Stages, result)
		if err := Transition(ctx, st.run, entry.stage, completed); err != nil {
			return err
		}
		if err := e.runs.Update(ctx, st.sub.Name, st.run); err != nil {
			return err
		}

		logger.Debug().
			Str("stage", entry.stage.String()).
			Bool("skipped", skipped).
			Dur("duration", result.Duration).
			Msg("stage complete")
	}
	return nil
}

// markFailed records the failure on the run. Uses a detached context so the
// record reflects the failure even when the run was canceled.
func (e *Engine) markFailed(ctx context.Context, st *runState, stageErr error, now time.Time) {
	logger := zerolog.Ctx(ctx)
	detached := context.WithoutCancel(ctx)

	st.run.Error = stageErr.Error()
	if err := Transition(detached, st.run, constants.StageFailed, now); err != nil {
		logger.Error().Err(err).Msg("failed to mark run as failed")
	}
	if err := e.runs.Update(detached, st.sub.Name, st.run); err != nil {
		logger.Error().Err(err).Msg("failed to persist failed run")
	}
}
