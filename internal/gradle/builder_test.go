package gradle_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
	"github.com/mrz1836/bwckit/internal/gradle"
)

// mockRunner is a CommandRunner that returns canned results and records the
// invocations it receives.
type mockRunner struct {
	calls    int
	lastDir  string
	lastEnv  []string
	lastName string
	lastArgs []string

	stdout   string
	stderr   string
	exitCode int
	err      error
}

func (m *mockRunner) Run(_ context.Context, workDir string, extraEnv []string, name string, args ...string) (string, string, int, error) {
	m.calls++
	m.lastDir = workDir
	m.lastEnv = extraEnv
	m.lastName = name
	m.lastArgs = args
	return m.stdout, m.stderr, m.exitCode, m.err
}

// createFakeCheckout creates a directory with an executable gradlew stub so
// the wrapper existence check passes.
func createFakeCheckout(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wrapper := filepath.Join(dir, "gradlew")
	require.NoError(t, os.WriteFile(wrapper, []byte("#!/bin/sh\nexit 0\n"), 0o700)) //#nosec G306 -- wrapper must be executable
	return dir
}

func testInvocation(t *testing.T, dir string) gradle.Invocation {
	t.Helper()
	inv, err := gradle.NewInvocation(dir, gradle.Options{LogLevel: zerolog.WarnLevel})
	require.NoError(t, err)
	return inv
}

func TestBuilder_Assemble_Success(t *testing.T) {
	dir := createFakeCheckout(t)
	runner := &mockRunner{stdout: "BUILD SUCCESSFUL"}
	builder := gradle.NewBuilderWithRunner(runner)

	result, err := builder.Assemble(context.Background(), testInvocation(t, dir))
	require.NoError(t, err)

	assert.True(t, result.Succeeded())
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "BUILD SUCCESSFUL", result.Stdout)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, dir, runner.lastDir)
	assert.Contains(t, runner.lastArgs, ":distribution:rpm:assemble")
}

func TestBuilder_Assemble_NonZeroExitIsNotAnError(t *testing.T) {
	// The artifact set is the correctness gate; a failing exit code is
	// reported in the result and left for the caller to weigh.
	dir := createFakeCheckout(t)
	runner := &mockRunner{stderr: "FAILURE: Build failed", exitCode: 1}
	builder := gradle.NewBuilderWithRunner(runner)

	result, err := builder.Assemble(context.Background(), testInvocation(t, dir))
	require.NoError(t, err)

	assert.False(t, result.Succeeded())
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "FAILURE")
}

func TestBuilder_Assemble_MissingWrapper(t *testing.T) {
	dir := t.TempDir() // no gradlew inside
	runner := &mockRunner{}
	builder := gradle.NewBuilderWithRunner(runner)

	_, err := builder.Assemble(context.Background(), testInvocation(t, dir))
	require.Error(t, err)
	assert.ErrorIs(t, err, bwcerrors.ErrGradleNotFound)
	assert.Zero(t, runner.calls, "runner must not be invoked without a wrapper")
}

func TestBuilder_Assemble_StartFailure(t *testing.T) {
	dir := createFakeCheckout(t)
	runner := &mockRunner{err: errors.New("fork/exec: permission denied")}
	builder := gradle.NewBuilderWithRunner(runner)

	_, err := builder.Assemble(context.Background(), testInvocation(t, dir))
	require.Error(t, err)
	assert.ErrorIs(t, err, bwcerrors.ErrGradleBuild)
}

func TestBuilder_Assemble_ContextCanceled(t *testing.T) {
	dir := createFakeCheckout(t)
	runner := &mockRunner{err: context.Canceled}
	builder := gradle.NewBuilderWithRunner(runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := builder.Assemble(ctx, testInvocation(t, dir))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuilder_Assemble_EnvForwarded(t *testing.T) {
	dir := createFakeCheckout(t)
	runner := &mockRunner{}
	builder := gradle.NewBuilderWithRunner(runner)

	inv, err := gradle.NewInvocation(dir, gradle.Options{
		Branch:            "5.6",
		HostRuntimeLegacy: true,
		RuntimeJavaHome:   "/opt/jdk8",
	})
	require.NoError(t, err)

	_, err = builder.Assemble(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, []string{"JAVA_HOME=/opt/jdk8"}, runner.lastEnv)
}

// liveRunner implements LiveOutputRunner and writes a marker to the live
// writer so the streaming path can be asserted.
type liveRunner struct {
	mockRunner
	liveCalls int
}

func (l *liveRunner) RunWithLiveOutput(ctx context.Context, workDir string, extraEnv []string, liveOut io.Writer, name string, args ...string) (string, string, int, error) {
	l.liveCalls++
	_, _ = liveOut.Write([]byte("streamed"))
	return l.Run(ctx, workDir, extraEnv, name, args...)
}

func TestBuilder_Assemble_LiveOutput(t *testing.T) {
	dir := createFakeCheckout(t)
	runner := &liveRunner{}
	builder := gradle.NewBuilderWithRunner(runner)

	var sink bytes.Buffer
	builder.SetLiveOutput(&sink)

	_, err := builder.Assemble(context.Background(), testInvocation(t, dir))
	require.NoError(t, err)
	assert.Equal(t, 1, runner.liveCalls)
	assert.Equal(t, "streamed", sink.String())
}
