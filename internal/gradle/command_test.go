package gradle_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/bwckit/internal/gradle"
)

// The runner tests exercise DefaultCommandRunner against the git binary,
// which is the one external executable the test suite already requires.

func TestDefaultCommandRunner_Run_Success(t *testing.T) {
	runner := &gradle.DefaultCommandRunner{}

	stdout, _, exitCode, err := runner.Run(context.Background(), t.TempDir(), nil, "git", "version")
	require.NoError(t, err)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "git version")
}

func TestDefaultCommandRunner_Run_NonZeroExit(t *testing.T) {
	runner := &gradle.DefaultCommandRunner{}

	// An unknown subcommand makes git exit non-zero; per the runner
	// contract that is a result, not an error.
	_, stderr, exitCode, err := runner.Run(context.Background(), t.TempDir(), nil, "git", "definitely-not-a-subcommand")
	require.NoError(t, err)

	assert.NotEqual(t, 0, exitCode)
	assert.NotEmpty(t, stderr)
}

func TestDefaultCommandRunner_Run_MissingExecutable(t *testing.T) {
	runner := &gradle.DefaultCommandRunner{}

	_, _, _, err := runner.Run(context.Background(), t.TempDir(), nil, "bwc-no-such-binary-xyz")
	require.Error(t, err)
}

func TestDefaultCommandRunner_Run_ContextCanceled(t *testing.T) {
	runner := &gradle.DefaultCommandRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := runner.Run(ctx, t.TempDir(), nil, "git", "version")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultCommandRunner_Run_ExtraEnv(t *testing.T) {
	runner := &gradle.DefaultCommandRunner{}

	// GIT_CONFIG_COUNT/KEY/VALUE inject configuration through the
	// environment, which proves extraEnv reaches the child process.
	env := []string{
		"GIT_CONFIG_COUNT=1",
		"GIT_CONFIG_KEY_0=bwc.probe",
		"GIT_CONFIG_VALUE_0=reached",
	}

	stdout, _, exitCode, err := runner.Run(context.Background(), t.TempDir(), env, "git", "config", "bwc.probe")
	require.NoError(t, err)

	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "reached", strings.TrimSpace(stdout))
}

func TestDefaultCommandRunner_RunWithLiveOutput(t *testing.T) {
	runner := &gradle.DefaultCommandRunner{}

	var live bytes.Buffer
	stdout, _, exitCode, err := runner.RunWithLiveOutput(context.Background(), t.TempDir(), nil, &live, "git", "version")
	require.NoError(t, err)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "git version")
	assert.Equal(t, stdout, live.String(), "live writer should mirror captured output")
}
