// Package probe executes operating-system diagnostic commands under a strict
// wait bound and classifies every failure into a closed taxonomy. Retry
// policy belongs to callers; a probe either returns captured stdout or a
// typed failure, never both.
package probe

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// waitDelay bounds how long we wait for pipe teardown after killing a timed
// out command, so an inherited file descriptor cannot keep Run blocked.
const waitDelay = 2 * time.Second

// maxStderr caps how much of a failing command's stderr is carried in the
// returned error.
const maxStderr = 512

// Command describes one diagnostic invocation. Timeout is strict: a command
// still running when it elapses is killed and reported as a timeout.
type Command struct {
	Source  string
	Name    string
	Args    []string
	Timeout time.Duration
}

// Runner executes diagnostic commands. Implementations must honor the
// command's timeout and must not leak processes on abandonment.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner creates a Runner backed by os/exec. Pass nil for no logging.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{logger: logger}
}

// Run executes the command and returns its stdout text. Failures are always
// *Error values: Timeout when the wait bound elapsed, LaunchFailure when the
// process could not start, NonZeroExit with code and stderr otherwise.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	c.WaitDelay = waitDelay

	start := time.Now()
	err := c.Run()
	elapsed := time.Since(start)

	if err == nil {
		r.logger.Debug("Probe completed",
			zap.String("source", cmd.Source),
			zap.Duration("elapsed", elapsed))
		return stdout.String(), nil
	}

	if runCtx.Err() == context.DeadlineExceeded {
		r.logger.Warn("Probe timed out",
			zap.String("source", cmd.Source),
			zap.Duration("timeout", cmd.Timeout))
		return "", &Error{Kind: KindTimeout, Source: cmd.Source, Err: runCtx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &Error{
			Kind:     KindNonZeroExit,
			Source:   cmd.Source,
			ExitCode: exitErr.ExitCode(),
			Stderr:   truncate(strings.TrimSpace(stderr.String()), maxStderr),
			Err:      err,
		}
	}

	return "", &Error{Kind: KindLaunchFailure, Source: cmd.Source, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
