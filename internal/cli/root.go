package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/bwckit/internal/errors"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// Set during PersistentPreRunE; access it via Logger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// Logger returns the initialized logger for use by subcommands.
//
// It MUST only be called after the root command's PersistentPreRunE has
// executed; before that it returns a zero-value logger that discards all
// output. Safe for concurrent use.
func Logger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates and returns the root command for the bwc CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "bwc",
		Short: "bwc - backward compatibility build orchestrator",
		Long: `bwc builds prior release lines of the enclosing project so the current
code can be tested against the distribution packages older versions produced.

For every configured bwc subproject it clones the repository into a scratch
directory, checks out the release branch, records the built commit, delegates
to the checkout's own gradle wrapper for the deb, rpm, and zip packages, and
verifies all three exist before registering them.

Subprojects are named after release lines ("5.6", "6.1") plus the rolling
"next-minor-snapshot" line that tracks the unreleased next minor.`,
		Version: formatVersion(info),
		// Run displays help when the root command is invoked without
		// subcommands, so PersistentPreRunE still validates the flags.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd, flags); err != nil {
				return err
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			globalLoggerMu.Lock()
			globalLogger = InitLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		// Usage on error is noise; the error printer in Execute handles
		// the message and the actionable hint.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddBuildCommand(cmd)
	AddStatusCommand(cmd)
	AddVersionsCommand(cmd)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// printError writes the error and, when one is known, a suggested action.
func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, "Error:", err)
	if _, action := errors.Actionable(err); action != "" {
		_, _ = fmt.Fprintln(w, "Hint:", action)
	}
}

// Execute runs the root command with the provided context and build info.
// Errors are printed to stderr with an actionable hint where available; the
// caller maps the returned error to an exit code.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}
