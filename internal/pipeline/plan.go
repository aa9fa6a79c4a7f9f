package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/mrz1836/bwckit/internal/artifact"
	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/domain"
	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
	"github.com/mrz1836/bwckit/internal/version"
)

// PlanEntry describes what one subproject's run would do, resolved without
// any side effects beyond reading the metadata store.
type PlanEntry struct {
	// Subproject is the bwc subproject name.
	Subproject string `json:"subproject"`

	// Version is the rendered release version the subproject builds.
	Version string `json:"version"`

	// Branch is the release branch derived from the version.
	Branch string `json:"branch"`

	// Refspec is the ref the run would check out, after three-tier
	// resolution against the current metadata store.
	Refspec string `json:"refspec"`

	// CheckoutDir is where the scratch clone lives (or would live).
	CheckoutDir string `json:"checkout_dir"`
}

// StatusEntry extends a PlanEntry with what previous runs left behind.
type StatusEntry struct {
	PlanEntry

	// Commit is the hash recorded by the last completed metadata stage,
	// empty when the subproject has never been built.
	Commit string `json:"commit,omitempty"`

	// CheckoutExists reports whether the scratch clone is on disk.
	CheckoutExists bool `json:"checkout_exists"`

	// Artifacts reports per-format presence of the expected files.
	Artifacts map[constants.PackageFormat]bool `json:"artifacts"`

	// LastRunID identifies the most recent run, empty when none exists.
	LastRunID string `json:"last_run_id,omitempty"`

	// LastStage is the stage the most recent run ended on, empty when no
	// run has been recorded.
	LastStage constants.Stage `json:"last_stage,omitempty"`

	// LastUpdatedAt is when the most recent run last changed stage, nil
	// when no run has been recorded.
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

// Plan resolves what RunAll would do for the given subprojects without
// cloning, fetching, or building anything. Subprojects with no mapped
// version are left out, matching the run-time no-op.
func (e *Engine) Plan(ctx context.Context, subs []domain.Subproject) ([]PlanEntry, error) {
	entries := make([]PlanEntry, 0, len(subs))
	for _, sub := range subs {
		ver, ok := e.versions[sub.Name]
		if !ok {
			continue
		}

		branch := version.BranchFor(sub, ver)
		persisted, _, err := e.meta.Refspec(ctx, sub)
		if err != nil {
			return nil, err
		}
		refspec := ResolveRefspec(e.settings.RefspecOverrides[sub.Name], persisted, DefaultRefspec(e.settings.RemoteName, branch))

		entries = append(entries, PlanEntry{
			Subproject:  sub.Name,
			Version:     ver.String(),
			Branch:      branch,
			Refspec:     refspec,
			CheckoutDir: e.CheckoutDir(sub),
		})
	}
	return entries, nil
}

// Status reports the current on-disk state for the given subprojects: the
// plan, the last recorded commit, and which artifacts already exist.
func (e *Engine) Status(ctx context.Context, subs []domain.Subproject) ([]StatusEntry, error) {
	plan, err := e.Plan(ctx, subs)
	if err != nil {
		return nil, err
	}

	entries := make([]StatusEntry, 0, len(plan))
	for _, p := range plan {
		sub := domain.NewSubproject(p.Subproject)

		commit, _, err := e.meta.Get(ctx, sub, sub.MetadataKey())
		if err != nil {
			return nil, err
		}

		set, err := artifact.NewSet(p.CheckoutDir, p.Version)
		if err != nil {
			return nil, err
		}

		runner, err := e.newRunner(p.CheckoutDir)
		if err != nil {
			return nil, err
		}

		entry := StatusEntry{
			PlanEntry:      p,
			Commit:         commit,
			CheckoutExists: runner.Exists(),
			Artifacts:      set.Present(),
		}

		last, err := e.runs.Latest(ctx, sub.Name)
		switch {
		case err == nil:
			entry.LastRunID = last.ID
			entry.LastStage = last.Stage
			entry.LastUpdatedAt = &last.UpdatedAt
		case errors.Is(err, bwcerrors.ErrRunNotFound):
			// never built, leave the run fields empty
		default:
			return nil, err
		}

		entries = append(entries, entry)
	}
	return entries, nil
}
