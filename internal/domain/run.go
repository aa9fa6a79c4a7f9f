// Package domain provides shared domain types for the bwckit build orchestrator.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case per architecture requirements.
package domain

import (
	"time"

	"github.com/mrz1836/bwckit/internal/constants"
)

// Run represents one execution of the build pipeline for a single bwc
// subproject. A run walks the checkout through clone, remote setup, fetch,
// checkout, metadata recording, the delegated distribution build, and
// artifact verification.
//
// Example JSON representation:
//
//	{
//	    "id": "run-20260825-100000",
//	    "subproject": "5.6",
//	    "version": "5.6.17-SNAPSHOT",
//	    "branch": "5.6",
//	    "refspec": "elastic/5.6",
//	    "commit": "9f2d1c7...",
//	    "stage": "verified",
//	    "offline": false,
//	    "stages": [...],
//	    "created_at": "2026-08-25T10:00:00Z",
//	    "updated_at": "2026-08-25T10:41:12Z",
//	    "schema_version": "1.0"
//	}
type Run struct {
	// ID is the unique identifier for the run.
	// Format: run-YYYYMMDD-HHMMSS
	ID string `json:"id"`

	// Subproject is the name of the bwc subproject this run builds.
	Subproject string `json:"subproject"`

	// Version is the resolved release version string, including any
	// snapshot qualifier (e.g. "5.6.17-SNAPSHOT").
	Version string `json:"version"`

	// Branch is the release branch derived from the version.
	Branch string `json:"branch"`

	// Refspec is the ref that was checked out, after three-tier resolution.
	Refspec string `json:"refspec"`

	// Commit is the hash the refspec resolved to, once known.
	Commit string `json:"commit,omitempty"`

	// CheckoutDir is the absolute path of the scratch clone.
	CheckoutDir string `json:"checkout_dir"`

	// Stage is the current position in the pipeline state machine.
	Stage constants.Stage `json:"stage"`

	// Offline records whether the fetch stage was skipped.
	Offline bool `json:"offline"`

	// Stages is the ordered history of stage outcomes.
	Stages []StageResult `json:"stages"`

	// Artifacts lists the absolute paths of verified distribution files.
	Artifacts []string `json:"artifacts,omitempty"`

	// BuildLog is the path of the captured delegated-build output, once the
	// build process has run.
	BuildLog string `json:"build_log,omitempty"`

	// Error holds the failure message when Stage is failed.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the run was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the run was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// CompletedAt is when the run finished (nil if not yet complete).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// SchemaVersion indicates the version of the Run struct schema.
	// This enables forward-compatible schema migrations.
	SchemaVersion string `json:"schema_version"`
}

// StageResult captures the outcome of executing one pipeline stage.
//
// Example JSON representation:
//
//	{
//	    "stage": "fetched",
//	    "success": true,
//	    "skipped": true,
//	    "duration": 0,
//	    "completed_at": "2026-08-25T10:00:03Z"
//	}
type StageResult struct {
	// Stage identifies which stage produced this result.
	Stage constants.Stage `json:"stage"`

	// Success indicates whether the stage completed without errors.
	Success bool `json:"success"`

	// Skipped indicates the stage was a policy no-op (existing checkout,
	// offline fetch). Skipped stages are always successful.
	Skipped bool `json:"skipped,omitempty"`

	// Output contains any text output worth keeping (e.g. resolved commit).
	Output string `json:"output,omitempty"`

	// Error contains the error message if Success is false.
	Error string `json:"error,omitempty"`

	// Duration is how long the stage took to execute.
	Duration time.Duration `json:"duration"`

	// CompletedAt is when the stage finished.
	CompletedAt time.Time `json:"completed_at"`
}

// LastStage returns the most recent stage result, or nil if none exist.
func (r *Run) LastStage() *StageResult {
	if len(r.Stages) == 0 {
		return nil
	}
	return &r.Stages[len(r.Stages)-1]
}

// Succeeded reports whether the run reached the terminal success stage.
func (r *Run) Succeeded() bool {
	return r.Stage == constants.StageVerified
}
