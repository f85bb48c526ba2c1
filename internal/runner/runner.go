// Package runner executes the external interpreter with a bounded
// wall-clock lifetime and staged termination on timeout.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ahktools/ahkcheck/domain"
)

// Default process lifetime bounds
const (
	// DefaultTimeout bounds one interpreter invocation
	DefaultTimeout = 30 * time.Second

	// DefaultGracePeriod is the delay between SIGTERM and SIGKILL
	DefaultGracePeriod = 2 * time.Second
)

// validationArgs is the canonical check-only argument vector. The
// interpreter is asked to emit structured diagnostics on stdout and to
// perform a syntax-only pass without side effects.
var validationArgs = []string{"/ErrorStdOut=UTF-8", "/validate"}

// Runner implements domain.ProcessRunner
type Runner struct {
	timeout time.Duration
	grace   time.Duration
}

// New creates a runner with default timeout and grace period
func New() *Runner {
	return &Runner{timeout: DefaultTimeout, grace: DefaultGracePeriod}
}

// NewWithTimeout creates a runner with explicit lifetime bounds.
// Non-positive values fall back to the defaults.
func NewWithTimeout(timeout, grace time.Duration) *Runner {
	r := New()
	if timeout > 0 {
		r.timeout = timeout
	}
	if grace > 0 {
		r.grace = grace
	}
	return r
}

// Run executes command with args and captures its output. It never
// returns an error: spawn failures resolve with the sentinel exit code
// and the error text appended to stderr, and a timeout triggers SIGTERM
// followed by SIGKILL after the grace period.
func (r *Runner) Run(ctx context.Context, command string, args []string, opts domain.RunOptions) domain.ProcessResult {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	grace := opts.GracePeriod
	if grace <= 0 {
		grace = r.grace
	}

	start := time.Now()

	cmd := exec.Command(command, args...)
	cmd.Dir = opts.Cwd
	// The interpreter is invoked non-interactively; stdin stays closed.
	cmd.Stdin = nil
	// Own process group: staged termination must reach descendants, not
	// just the direct child. WaitDelay stops Wait from blocking on output
	// pipes still held open by orphaned grandchildren after the kill.
	setProcessGroup(cmd)
	cmd.WaitDelay = grace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		errText := stderr.String()
		if errText != "" && !strings.HasSuffix(errText, "\n") {
			errText += "\n"
		}
		return domain.ProcessResult{
			Stdout:   stdout.String(),
			Stderr:   errText + err.Error(),
			ExitCode: domain.SpawnFailureExitCode,
			Duration: time.Since(start),
		}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timedOut := false
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-ctx.Done():
		// Caller cancellation terminates the process but is not a
		// timeout; TimedOut is reserved for the runner's own timer.
		r.terminate(cmd, grace, done)
	case <-timer.C:
		timedOut = true
		r.terminate(cmd, grace, done)
	}

	result := domain.ProcessResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
		TimedOut: timedOut,
	}
	if ws, ok := cmd.ProcessState.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		result.Signal = ws.Signal().String()
	}
	return result
}

// RunValidation invokes the interpreter's check-only mode against file.
// The argument vector is built here so the wire contract stays in one
// place; the working directory defaults to the file's directory.
func (r *Runner) RunValidation(ctx context.Context, interpreter, file string, opts domain.RunOptions) domain.ProcessResult {
	if opts.Cwd == "" {
		opts.Cwd = filepath.Dir(file)
	}
	args := make([]string, 0, len(validationArgs)+1)
	args = append(args, validationArgs...)
	args = append(args, file)
	return r.Run(ctx, interpreter, args, opts)
}

// terminate escalates from SIGTERM to SIGKILL and waits for exit.
// Signals go to the whole process group so interpreter-spawned children
// die with their parent.
func (r *Runner) terminate(cmd *exec.Cmd, grace time.Duration, done <-chan error) {
	if err := signalGroup(cmd, syscall.SIGTERM); err != nil {
		// Process already gone or signalling unsupported; go straight to kill
		_ = signalGroup(cmd, syscall.SIGKILL)
		<-done
		return
	}

	graceTimer := time.NewTimer(grace)
	defer graceTimer.Stop()

	select {
	case <-done:
	case <-graceTimer.C:
		_ = signalGroup(cmd, syscall.SIGKILL)
		<-done
	}
}
