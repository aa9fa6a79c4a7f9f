package gradle

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"

	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
	"github.com/mrz1836/bwckit/internal/version"
)

// snapshotProperty is passed to every delegated build. The bwc checkouts are
// always built as snapshots: the packages feed compatibility tests, never a
// release.
const snapshotProperty = "-Dbuild.snapshot=true"

// StacktraceMode selects how much failure detail the delegated build prints.
type StacktraceMode string

// Stacktrace modes, mapped onto the delegated build's own flags.
const (
	// StacktraceNone passes no stacktrace flag.
	StacktraceNone StacktraceMode = "none"

	// StacktraceShort passes --stacktrace.
	StacktraceShort StacktraceMode = "stacktrace"

	// StacktraceFull passes --full-stacktrace.
	StacktraceFull StacktraceMode = "full"
)

// Options configures how the delegated build is invoked.
type Options struct {
	// LogLevel is the bwc logger level; it is translated to the delegated
	// build's --quiet/--warn/--info/--debug flag.
	LogLevel zerolog.Level

	// Stacktrace selects the failure detail flag.
	Stacktrace StacktraceMode

	// Branch is the release branch being built; it decides whether a
	// legacy JAVA_HOME override is needed.
	Branch string

	// HostRuntimeLegacy marks the host JVM as too new for pre-6.2
	// branches, requiring RuntimeJavaHome to be exported to the child.
	HostRuntimeLegacy bool

	// RuntimeJavaHome is the JDK 8 installation handed to legacy branches.
	RuntimeJavaHome string
}

// Invocation is a fully-resolved delegated build command: what to run,
// where, and with which environment overrides.
type Invocation struct {
	// Dir is the checkout directory the build runs in.
	Dir string

	// Name is the executable (the wrapper script, or cmd.exe on Windows).
	Name string

	// Args is the argument vector after Name.
	Args []string

	// Env holds extra KEY=value entries appended to the inherited
	// environment (JAVA_HOME override for legacy branches).
	Env []string
}

// NewInvocation builds the Invocation that assembles the three distribution
// packages inside checkoutDir. The argument shape is fixed by the delegated
// build: three assemble tasks, the snapshot property, a log level flag, and
// an optional stacktrace flag.
func NewInvocation(checkoutDir string, opts Options) (Invocation, error) {
	return newInvocationForOS(runtime.GOOS, checkoutDir, opts)
}

// newInvocationForOS is the OS-parameterized core of NewInvocation, split
// out so both command shapes stay testable from one platform.
func newInvocationForOS(goos, checkoutDir string, opts Options) (Invocation, error) {
	if checkoutDir == "" {
		return Invocation{}, fmt.Errorf("checkout directory %w", bwcerrors.ErrEmptyValue)
	}

	args := []string{
		":distribution:deb:assemble",
		":distribution:rpm:assemble",
		":distribution:zip:assemble",
		snapshotProperty,
		levelFlag(opts.LogLevel),
	}
	switch opts.Stacktrace {
	case StacktraceShort:
		args = append(args, "--stacktrace")
	case StacktraceFull:
		args = append(args, "--full-stacktrace")
	case StacktraceNone, "":
		// no flag
	default:
		return Invocation{}, fmt.Errorf("stacktrace mode %q: %w", opts.Stacktrace, bwcerrors.ErrInvalidArgument)
	}

	inv := Invocation{Dir: checkoutDir, Args: args}

	wrapper := filepath.Join(checkoutDir, "gradlew")
	if goos == "windows" {
		// The wrapper resolves to a batch file there; "call" keeps
		// cmd.exe from swallowing the exit code.
		inv.Name = "cmd"
		inv.Args = append([]string{"/C", "call", wrapper}, inv.Args...)
	} else {
		inv.Name = wrapper
	}

	env, err := legacyJavaEnv(opts)
	if err != nil {
		return Invocation{}, err
	}
	inv.Env = env

	return inv, nil
}

// legacyJavaEnv returns the JAVA_HOME override for builds of pre-6.2
// branches on a legacy-flagged host, or nil when no override applies.
func legacyJavaEnv(opts Options) ([]string, error) {
	if !opts.HostRuntimeLegacy || !version.NeedsLegacyJava(opts.Branch) {
		return nil, nil
	}
	if opts.RuntimeJavaHome == "" {
		return nil, fmt.Errorf("branch %s: %w", opts.Branch, bwcerrors.ErrLegacyJavaHome)
	}
	return []string{"JAVA_HOME=" + opts.RuntimeJavaHome}, nil
}

// levelFlag maps the bwc logger level onto the delegated build's log flag.
func levelFlag(level zerolog.Level) string {
	switch {
	case level <= zerolog.DebugLevel:
		return "--debug"
	case level == zerolog.InfoLevel:
		return "--info"
	case level == zerolog.WarnLevel:
		return "--warn"
	default:
		return "--quiet"
	}
}

// WrapperPath returns the path of the wrapper script the invocation expects
// inside checkoutDir, for existence checks before launching. Windows
// checkouts also carry gradlew.bat, but the unsuffixed script is the one the
// invocation names on every platform.
func WrapperPath(checkoutDir string) string {
	return filepath.Join(checkoutDir, "gradlew")
}
