package domain

import "time"

// SpawnFailureExitCode is the sentinel exit code reported when the child
// process could not be started at all (executable missing, permission
// denied). Callers must treat any negative exit code as "could not
// execute", distinct from "executed and reported status >= 0".
const SpawnFailureExitCode = -1

// ProcessResult represents the outcome of one subprocess execution.
// All failure modes (spawn error, non-zero exit, timeout) are expressed
// in the result so callers can branch uniformly.
type ProcessResult struct {
	// Stdout and Stderr hold the captured output
	Stdout string
	Stderr string

	// ExitCode is the process exit status, or SpawnFailureExitCode when
	// the process never exited normally (spawn failure or killed by
	// signal; Signal disambiguates)
	ExitCode int

	// Signal names the terminating signal, if any
	Signal string

	// Duration is the measured wall-clock time
	Duration time.Duration

	// TimedOut is true iff the runner's timeout fired
	TimedOut bool
}

// Executed reports whether the child process actually ran, as opposed to
// failing at spawn time.
func (r ProcessResult) Executed() bool {
	return r.ExitCode >= 0 || r.Signal != ""
}

// RunOptions controls a single subprocess execution
type RunOptions struct {
	// Cwd is the working directory; empty means the caller's
	Cwd string

	// Timeout bounds the wall-clock lifetime; zero means the runner
	// default
	Timeout time.Duration

	// GracePeriod is the delay between the graceful termination signal
	// and the forceful kill; zero means the runner default
	GracePeriod time.Duration
}
