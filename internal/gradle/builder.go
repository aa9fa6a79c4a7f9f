package gradle

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

// Builder runs delegated distribution builds. The process is given no
// deadline of its own: a bwc assemble can legitimately run for a very long
// time, and context cancellation is the only stop.
type Builder struct {
	runner     CommandRunner
	liveOutput io.Writer // Optional: if set, streams build output in real-time
}

// NewBuilder creates a Builder with the default command runner.
func NewBuilder() *Builder {
	return &Builder{runner: &DefaultCommandRunner{}}
}

// NewBuilderWithRunner creates a Builder with a custom runner (for testing).
func NewBuilderWithRunner(runner CommandRunner) *Builder {
	return &Builder{runner: runner}
}

// SetLiveOutput configures the builder to stream build output in real-time.
// When set, stdout and stderr are written to w as they are produced.
func (b *Builder) SetLiveOutput(w io.Writer) {
	b.liveOutput = w
}

// Result captures the outcome of one delegated build process.
type Result struct {
	// ExitCode is the process exit status. Non-zero does not by itself
	// fail the pipeline; artifact verification is the correctness gate.
	ExitCode int

	// Stdout and Stderr hold the captured output streams.
	Stdout string
	Stderr string

	// StartedAt and Duration time the process from launch to exit.
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the process exited zero.
func (r *Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Assemble runs the invocation and waits for it to exit. The returned error
// covers only "could not run" conditions (missing wrapper, canceled
// context); a completed build with a non-zero exit comes back as a Result.
func (b *Builder) Assemble(ctx context.Context, inv Invocation) (*Result, error) {
	log := zerolog.Ctx(ctx)

	if _, err := os.Stat(WrapperPath(inv.Dir)); err != nil {
		return nil, fmt.Errorf("%s: %w", WrapperPath(inv.Dir), bwcerrors.ErrGradleNotFound)
	}

	log.Info().
		Str("dir", inv.Dir).
		Strs("args", inv.Args).
		Strs("env", inv.Env).
		Msg("starting delegated build")

	startedAt := time.Now()
	stdout, stderr, exitCode, runErr := b.execute(ctx, inv)
	duration := time.Since(startedAt)

	if runErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", bwcerrors.ErrGradleBuild, runErr)
	}

	result := &Result{
		ExitCode:  exitCode,
		Stdout:    stdout,
		Stderr:    stderr,
		StartedAt: startedAt,
		Duration:  duration,
	}

	if result.Succeeded() {
		log.Info().
			Dur("duration", duration).
			Msg("delegated build finished")
	} else {
		log.Warn().
			Int("exit_code", exitCode).
			Dur("duration", duration).
			Msg("delegated build exited non-zero")
	}

	return result, nil
}

// execute dispatches to the live-output path when both a live writer and a
// capable runner are available.
func (b *Builder) execute(ctx context.Context, inv Invocation) (stdout, stderr string, exitCode int, err error) {
	if b.liveOutput != nil {
		if live, ok := b.runner.(LiveOutputRunner); ok {
			return live.RunWithLiveOutput(ctx, inv.Dir, inv.Env, b.liveOutput, inv.Name, inv.Args...)
		}
	}
	return b.runner.Run(ctx, inv.Dir, inv.Env, inv.Name, inv.Args...)
}
