package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/domain"
	"github.com/mrz1836/bwckit/internal/pipeline"
	"github.com/mrz1836/bwckit/internal/signal"
	"github.com/mrz1836/bwckit/internal/tui"
)

// AddBuildCommand adds the build command to the root command.
func AddBuildCommand(root *cobra.Command) {
	root.AddCommand(newBuildCmd())
}

// buildOptions contains all options for the build command.
type buildOptions struct {
	offline    bool
	offlineSet bool // whether --offline was given, so false can mean "unset"
	refspecs   []string
	remote     string
	dryRun     bool
}

// newBuildCmd creates the build command.
func newBuildCmd() *cobra.Command {
	var (
		offline  bool
		refspecs []string
		remote   string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "build [subproject...]",
		Short: "Build distribution packages for bwc subprojects",
		Long: `Build the deb, rpm, and zip distribution packages for the named bwc
subprojects, or for every subproject with a configured version when none are
named. Each subproject gets its own scratch clone of the project repository,
checked out at its release branch, and the checkout's own gradle wrapper
runs the build. Independent subprojects build concurrently; one failure does
not stop the others.

Examples:
  bwc build                          # build every configured subproject
  bwc build 5.6 6.1                  # build two release lines
  bwc build next-minor-snapshot      # build the rolling line
  bwc build --offline 5.6            # skip the fetch, use existing refs
  bwc build --refspec 5.6=elastic/5.6.17 5.6
  bwc build --dry-run                # print the plan, touch nothing`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd, cmd.OutOrStdout(), args, buildOptions{
				offline:    offline,
				offlineSet: cmd.Flags().Changed("offline"),
				refspecs:   refspecs,
				remote:     remote,
				dryRun:     dryRun,
			})
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false,
		"skip the fetch stage; build whatever refs the checkouts already have")
	cmd.Flags().StringArrayVar(&refspecs, "refspec", nil,
		"force a refspec for a subproject, as <subproject>=<ref> (repeatable)")
	cmd.Flags().StringVar(&remote, "remote", "",
		"upstream remote name to ensure in every checkout")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"print the resolved plan without cloning or building anything")

	return cmd
}

// runBuild executes the build command.
func runBuild(ctx context.Context, cmd *cobra.Command, w io.Writer, args []string, opts buildOptions) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Ctrl+C must cancel the delegated builds; they have no deadline of
	// their own.
	sigHandler := signal.NewHandler(ctx)
	defer sigHandler.Stop()
	ctx = sigHandler.Context()

	logger := Logger()
	ctx = logger.WithContext(ctx)

	outputFormat := cmd.Flag("output").Value.String()
	verbose := cmd.Flag("verbose").Value.String() == "true"
	tui.CheckNoColor()
	out := tui.NewOutput(w, outputFormat)

	overrides, err := parseRefspecOverrides(opts.refspecs)
	if err != nil {
		return err
	}

	projectRoot, err := findProjectRoot(ctx)
	if err != nil {
		return err
	}

	cfg, err := loadProjectConfig(ctx, projectRoot)
	if err != nil {
		return err
	}

	// Flag overrides on top of the layered config. The offline bool only
	// applies when the flag was actually given; a bare false is
	// indistinguishable from unset.
	if opts.offlineSet {
		cfg.Build.Offline = opts.offline
	}
	if opts.remote != "" {
		cfg.Git.Remote = opts.remote
	}
	overrides = mergeRefspecOverrides(envRefspecOverrides(cfg.Versions), overrides)

	// In verbose text mode the delegated build's output streams through;
	// otherwise it is captured on the run record only.
	var live io.Writer
	if verbose && outputFormat != OutputJSON {
		live = w
	}

	settings := engineSettings(cfg, projectRoot, logger.GetLevel(), overrides)
	engine, err := newEngine(cfg, projectRoot, settings, live)
	if err != nil {
		return err
	}

	subs, err := selectSubprojects(engine, args)
	if err != nil {
		return err
	}

	if opts.dryRun {
		entries, err := engine.Plan(ctx, subs)
		if err != nil {
			return err
		}
		return displayPlan(out, outputFormat, entries)
	}

	logger.Info().
		Int("subprojects", len(subs)).
		Bool("offline", cfg.Build.Offline).
		Str("remote", cfg.Git.Remote).
		Msg("starting bwc builds")

	runs, runErr := engine.RunAll(ctx, subs)

	select {
	case <-sigHandler.Interrupted():
		out.Warning("Interrupted. Checkouts and run records are preserved; rerun to continue.")
	default:
	}

	return displayRuns(out, outputFormat, runs, runErr)
}

// planResponse is the JSON output for a dry run.
type planResponse struct {
	DryRun bool                 `json:"dry_run"`
	Plan   []pipeline.PlanEntry `json:"plan"`
}

// displayPlan outputs the dry-run plan in the requested format.
func displayPlan(out tui.Output, format string, entries []pipeline.PlanEntry) error {
	if format == OutputJSON {
		return out.JSON(planResponse{DryRun: true, Plan: entries})
	}

	out.Info("Dry run - nothing will be cloned or built.")
	for _, e := range entries {
		out.Info(fmt.Sprintf("%s: version %s, branch %s, refspec %s", e.Subproject, e.Version, e.Branch, e.Refspec))
		out.Info("  checkout: " + e.CheckoutDir)
	}
	return nil
}

// buildResponse is the JSON output for build runs.
type buildResponse struct {
	Success bool          `json:"success"`
	Runs    []*domain.Run `json:"runs"`
	Error   string        `json:"error,omitempty"`
}

// displayRuns outputs the collected runs in the requested format and passes
// the aggregate error through for the exit code.
func displayRuns(out tui.Output, format string, runs []*domain.Run, runErr error) error {
	if format == OutputJSON {
		resp := buildResponse{Success: runErr == nil, Runs: runs}
		if runErr != nil {
			resp.Error = runErr.Error()
		}
		if err := out.JSON(resp); err != nil {
			return err
		}
		return runErr
	}

	for _, run := range runs {
		if run.Succeeded() {
			out.Success(fmt.Sprintf("%s: built %s from %s (%s) in %s",
				run.Subproject, run.Version, run.Refspec, shortCommit(run.Commit), runDuration(run)))
			if warning := gradleExitWarning(run); warning != "" {
				out.Warning(warning)
				if run.BuildLog != "" {
					out.Info("  build log: " + run.BuildLog)
				}
			}
			for _, path := range run.Artifacts {
				out.Info("  " + path)
			}
		} else {
			out.Error(fmt.Errorf("%s: failed at %s: %s", run.Subproject, failedStage(run), run.Error))
			if run.BuildLog != "" {
				out.Info("  build log: " + run.BuildLog)
			}
		}
	}
	return runErr
}

// failedStage names the stage a failed run died at. The failing stage is
// the last recorded result that did not succeed.
func failedStage(run *domain.Run) constants.Stage {
	for i := len(run.Stages) - 1; i >= 0; i-- {
		if !run.Stages[i].Success {
			return run.Stages[i].Stage
		}
	}
	return run.Stage
}

// gradleExitWarning surfaces a verified run whose delegated build exited
// non-zero. The artifact set is the correctness gate, but the operator
// should still know the build process complained.
func gradleExitWarning(run *domain.Run) string {
	for _, result := range run.Stages {
		if result.Stage != constants.StageBuilt {
			continue
		}
		if result.Output != "" && !strings.HasSuffix(result.Output, "code 0") {
			return fmt.Sprintf("%s: %s but all artifacts exist", run.Subproject, result.Output)
		}
	}
	return ""
}

// shortCommit truncates a commit hash for display.
func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}

// runDuration renders how long a run took, rounded to whole seconds.
func runDuration(run *domain.Run) string {
	if run.CompletedAt == nil {
		return "-"
	}
	return run.CompletedAt.Sub(run.CreatedAt).Round(time.Second).String()
}
