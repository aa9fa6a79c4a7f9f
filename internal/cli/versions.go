package cli

import (
	"context"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mrz1836/bwckit/internal/constants"
	"github.com/mrz1836/bwckit/internal/domain"
	"github.com/mrz1836/bwckit/internal/errors"
	"github.com/mrz1836/bwckit/internal/tui"
	"github.com/mrz1836/bwckit/internal/version"
)

// AddVersionsCommand adds the versions command to the root command.
func AddVersionsCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List configured bwc subprojects and their versions",
		Long: `List every bwc subproject the merged configuration knows about, with
the version it builds and the release branch that version maps to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersions(cmd.Context(), cmd, cmd.OutOrStdout())
		},
	}
	root.AddCommand(cmd)
}

// versionEntry is one row of versions output.
type versionEntry struct {
	Subproject string `json:"subproject"`
	Path       string `json:"path"`
	Version    string `json:"version"`
	Branch     string `json:"branch"`
}

// runVersions executes the versions command.
func runVersions(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := Logger()
	ctx = logger.WithContext(ctx)

	outputFormat := cmd.Flag("output").Value.String()
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

	entries, err := versionEntries(cfg.Versions)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		if outputFormat == OutputJSON {
			return out.JSON([]versionEntry{})
		}
		out.Info("No bwc versions configured. Add subprojects to " + constants.VersionsFileName + " to get started.")
		return nil
	}

	if outputFormat == OutputJSON {
		return out.JSON(entries)
	}
	return renderVersions(w, entries)
}

// versionEntries resolves the configured version map into sorted display
// rows, surfacing unparseable versions instead of skipping them.
func versionEntries(versions map[string]string) ([]versionEntry, error) {
	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]versionEntry, 0, len(names))
	for _, name := range names {
		sub := domain.NewSubproject(name)
		v, err := version.Parse(versions[name])
		if err != nil {
			return nil, errors.Wrapf(err, "subproject %s", name)
		}
		entries = append(entries, versionEntry{
			Subproject: sub.Name,
			Path:       sub.Path(),
			Version:    v.String(),
			Branch:     version.BranchFor(sub, v),
		})
	}
	return entries, nil
}

// renderVersions renders the rows as a plain table sized to its content.
func renderVersions(w io.Writer, entries []versionEntry) error {
	cols := []tui.TableColumn{
		{Name: "SUBPROJECT", Width: len("SUBPROJECT")},
		{Name: "VERSION", Width: len("VERSION")},
		{Name: "BRANCH", Width: len("BRANCH")},
	}
	for _, e := range entries {
		cols[0].Width = max(cols[0].Width, len(e.Subproject))
		cols[1].Width = max(cols[1].Width, len(e.Version))
		cols[2].Width = max(cols[2].Width, len(e.Branch))
	}

	table := tui.NewTable(w, cols)
	table.WriteHeader()
	for _, e := range entries {
		table.WriteRow(e.Subproject, e.Version, e.Branch)
	}
	return nil
}
