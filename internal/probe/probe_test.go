package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	r := NewExecRunner(nil)
	out, err := r.Run(context.Background(), Command{
		Source:  "echo",
		Name:    "echo",
		Args:    []string{"hello"},
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunLaunchFailure(t *testing.T) {
	r := NewExecRunner(nil)
	_, err := r.Run(context.Background(), Command{
		Source:  "missing",
		Name:    "definitely-not-a-real-binary-xyz",
		Timeout: time.Second,
	})
	require.Error(t, err)
	assert.Equal(t, KindLaunchFailure, KindOf(err))
}

func TestRunNonZeroExit(t *testing.T) {
	r := NewExecRunner(nil)
	_, err := r.Run(context.Background(), Command{
		Source:  "sh",
		Name:    "sh",
		Args:    []string{"-c", "echo boom >&2; exit 3"},
		Timeout: 2 * time.Second,
	})
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindNonZeroExit, pe.Kind)
	assert.Equal(t, 3, pe.ExitCode)
	assert.Equal(t, "boom", pe.Stderr)
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	r := NewExecRunner(nil)

	start := time.Now()
	_, err := r.Run(context.Background(), Command{
		Source:  "sleep",
		Name:    "sleep",
		Args:    []string{"10"},
		Timeout: 100 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, IsTimeout(err), "expected timeout, got %v", err)
	assert.Less(t, elapsed, 5*time.Second, "runner must not wait out the full sleep")
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "launch_failure", KindLaunchFailure.String())
	assert.Equal(t, "non_zero_exit", KindNonZeroExit.String())
	assert.Equal(t, "parse_mismatch", KindParseMismatch.String())
}
