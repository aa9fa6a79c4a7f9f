// Package git provides Git operations for bwckit.
// This file provides shared git command execution utilities.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

// CommandError is the failure result of a git invocation. It keeps stderr
// structured because callers need more than a flattened message: refspec
// resolution failures are logged to the error stream line by line before the
// pipeline gives up.
type CommandError struct {
	// Args is the git argument vector that failed (without the leading "git").
	Args []string
	// Stderr is the raw captured error stream, trimmed of trailing whitespace.
	Stderr string
	// ExitErr is the underlying process error.
	ExitErr error
}

// Error renders the failure in the "git <subcommand> failed" form, with
// stderr appended when present.
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s failed: %s", e.Args[0], e.Stderr)
	}
	return fmt.Sprintf("git %s failed", e.Args[0])
}

// Unwrap marks every command failure as ErrGitOperation for errors.Is checks.
func (e *CommandError) Unwrap() error {
	return bwcerrors.ErrGitOperation
}

// StderrLines splits the captured stderr into individual lines, dropping
// blank ones. Used by callers that log tool output line by line.
func (e *CommandError) StderrLines() []string {
	if e.Stderr == "" {
		return nil
	}
	raw := strings.Split(e.Stderr, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if trimmed := strings.TrimRight(l, "\r"); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// RunCommand executes a git command in the specified directory and returns its
// stdout with surrounding whitespace trimmed. Failures come back as a
// *CommandError wrapping ErrGitOperation, except context cancellation which is
// returned as the context's own error.
func RunCommand(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //#nosec G204 -- args are constructed internally, not user input
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Check for context cancellation
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &CommandError{
			Args:    args,
			Stderr:  strings.TrimSpace(stderr.String()),
			ExitErr: err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}
