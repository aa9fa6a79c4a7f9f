package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/pipeline"
	"github.com/mrz1836/bwckit/internal/tui"
)

// AddStatusCommand adds the status command to the root command.
func AddStatusCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status [subproject...]",
		Short: "Show build state for bwc subprojects",
		Long: `Show the recorded build state for the named bwc subprojects, or for
every configured subproject when none are named: resolved version and
branch, the commit pinned by the last run, how far the last run got, and
which distribution packages are registered.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd, cmd.OutOrStdout(), args)
		},
	}
	root.AddCommand(cmd)
}

// runStatus executes the status command.
func runStatus(ctx context.Context, cmd *cobra.Command, w io.Writer, args []string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := Logger()
	ctx = logger.WithContext(ctx)

	outputFormat := cmd.Flag("output").Value.String()
	quiet := cmd.Flag("quiet").Value.String() == "true"
	tui.CheckNoColor()
	out := tui.NewOutput(w, outputFormat)

	projectRoot, err := findProjectRoot(ctx)
	if err != nil {
		return err
	}

	cfg, err := loadProjectConfig(ctx, projectRoot)
	if err != nil {
		return err
	}

	settings := engineSettings(cfg, projectRoot, logger.GetLevel(), envRefspecOverrides(cfg.Versions))
	engine, err := newEngine(cfg, projectRoot, settings, nil)
	if err != nil {
		return err
	}

	// An empty version table is a readable answer here, not an error.
	subs := engine.Subprojects()
	if len(args) > 0 {
		if subs, err = selectSubprojects(engine, args); err != nil {
			return err
		}
	}
	if len(subs) == 0 {
		if outputFormat == OutputJSON {
			return out.JSON([]pipeline.StatusEntry{})
		}
		out.Info("No bwc versions configured. Add subprojects to " + constants.VersionsFileName + " to get started.")
		return nil
	}

	entries, err := engine.Status(ctx, subs)
	if err != nil {
		return err
	}

	if outputFormat == OutputJSON {
		return out.JSON(entries)
	}
	return renderStatus(w, statusRows(entries), quiet)
}

// statusRows maps pipeline status entries onto table rows.
func statusRows(entries []pipeline.StatusEntry) []tui.StatusRow {
	rows := make([]tui.StatusRow, 0, len(entries))
	for _, e := range entries {
		row := tui.StatusRow{
			Subproject: e.Subproject,
			Version:    e.Version,
			Branch:     e.Branch,
			Commit:     e.Commit,
			Stage:      e.LastStage,
			Artifacts:  e.Artifacts,
		}
		if e.LastUpdatedAt != nil {
			row.UpdatedAt = *e.LastUpdatedAt
		}
		rows = append(rows, row)
	}
	return rows
}

// renderStatus renders the status table with a summary footer.
func renderStatus(w io.Writer, rows []tui.StatusRow, quiet bool) error {
	if err := tui.NewStatusTable(rows).Render(w); err != nil {
		return err
	}
	if quiet {
		return nil
	}

	verified := 0
	var pending string
	for _, row := range rows {
		if row.Stage == constants.StageVerified {
			verified++
		} else if pending == "" {
			pending = row.Subproject
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d subprojects, %d verified\n", len(rows), verified)
	if pending != "" {
		fmt.Fprintf(w, "Run: bwc build %s\n", pending)
	}
	return nil
}
