// Package gradle invokes the delegated distribution build inside a checkout.
//
// SECURITY NOTE: The executable run by this package is the gradle wrapper
// script committed to the checked-out repository. It is treated as trusted
// input because the operator chose which repository and refspec to build;
// anyone able to change the wrapper already has full control over the build
// anyway. This is the same trust model as running the checkout's Makefile.
package gradle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// CommandRunner defines the interface for executing the delegated build
// process. This allows for testing by injecting mock implementations.
// Unlike a shell runner, commands are argv vectors: the argument list is
// constructed programmatically and must not go through shell splitting.
type CommandRunner interface {
	// Run executes the program with the given argv in workDir and returns
	// captured output. extraEnv entries (KEY=value) are appended to the
	// inherited environment.
	//
	// A non-zero exit is NOT an error: the process ran, and exitCode
	// reports how it ended. err is non-nil only when the process could
	// not run at all (missing executable, canceled context).
	Run(ctx context.Context, workDir string, extraEnv []string, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// LiveOutputRunner defines a command runner that supports live output streaming.
type LiveOutputRunner interface {
	CommandRunner
	// RunWithLiveOutput executes a command and streams output to the writer while also capturing it.
	RunWithLiveOutput(ctx context.Context, workDir string, extraEnv []string, liveOut io.Writer, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// DefaultCommandRunner implements CommandRunner and LiveOutputRunner using os/exec.
type DefaultCommandRunner struct{}

// Run executes the program and captures its output.
func (r *DefaultCommandRunner) Run(ctx context.Context, workDir string, extraEnv []string, name string, args ...string) (stdout, stderr string, exitCode int, err error) {
	return r.runCommand(ctx, workDir, extraEnv, nil, name, args...)
}

// RunWithLiveOutput executes a command and streams output to liveOut while also capturing it.
func (r *DefaultCommandRunner) RunWithLiveOutput(ctx context.Context, workDir string, extraEnv []string, liveOut io.Writer, name string, args ...string) (stdout, stderr string, exitCode int, err error) {
	return r.runCommand(ctx, workDir, extraEnv, liveOut, name, args...)
}

// runCommand executes a command with optional live output streaming.
// If liveOut is non-nil, output is streamed to it while also being captured.
func (r *DefaultCommandRunner) runCommand(ctx context.Context, workDir string, extraEnv []string, liveOut io.Writer, name string, args ...string) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, name, args...) //#nosec G204 -- argv is constructed internally, not user input
	cmd.Dir = workDir
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	var outBuf, errBuf bytes.Buffer
	if liveOut != nil {
		cmd.Stdout = io.MultiWriter(&outBuf, liveOut)
		cmd.Stderr = io.MultiWriter(&errBuf, liveOut)
	} else {
		cmd.Stdout = &outBuf
		cmd.Stderr = &errBuf
	}

	err = cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			// Ran to completion with a non-zero status: report the
			// code, not an error.
			return stdout, stderr, exitErr.ExitCode(), nil
		}
		if ctx.Err() != nil {
			return stdout, stderr, 1, ctx.Err()
		}
		return stdout, stderr, 1, err
	}

	return stdout, stderr, 0, nil
}

// Ensure DefaultCommandRunner implements CommandRunner and LiveOutputRunner.
var (
	_ CommandRunner    = (*DefaultCommandRunner)(nil)
	_ LiveOutputRunner = (*DefaultCommandRunner)(nil)
)
