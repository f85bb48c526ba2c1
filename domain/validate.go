package domain

import (
	"context"
	"regexp"
)

// OutputFormat represents the supported report formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// ProcessRunner executes the external interpreter with a bounded lifetime
type ProcessRunner interface {
	// Run executes command with args. It never returns an error; all
	// failure modes are represented in the ProcessResult.
	Run(ctx context.Context, command string, args []string, opts RunOptions) ProcessResult

	// RunValidation builds the canonical check-only argument vector for
	// the interpreter and runs it against file. The working directory
	// defaults to the file's directory unless opts overrides it.
	RunValidation(ctx context.Context, interpreter, file string, opts RunOptions) ProcessResult
}

// ErrorParser converts raw interpreter output into normalized diagnostics
type ErrorParser interface {
	// Parse accepts either the structured JSON format or the
	// line-oriented format without the caller pre-declaring which is in
	// use. Malformed input degrades to an empty diagnostic set.
	Parse(raw, defaultFile string) ValidationResult
}

// DiagnosticCache stores validation results keyed by normalized file path
type DiagnosticCache interface {
	// Get returns the cached result for path, or ok=false on a miss or
	// when the entry is expired or its file fingerprints no longer match
	Get(path string) (ValidationResult, bool)

	// Set stores result for path. When content is non-nil it is used to
	// compute the content fingerprint instead of re-reading the file.
	Set(path string, result ValidationResult, content []byte)

	// Invalidate removes the entry for path, if present
	Invalidate(path string)

	// InvalidatePattern removes all entries whose normalized key matches
	// pattern and returns how many were removed
	InvalidatePattern(pattern *regexp.Regexp) int

	// Clear removes all entries
	Clear()
}

// DiagnosticSource produces diagnostics for a file from one tool.
// Sources are ranked by Priority when the aggregator merges overlapping
// findings; higher values win.
type DiagnosticSource interface {
	Name() string
	Priority() int
	Diagnostics(ctx context.Context, file string) ([]Diagnostic, error)
}

// ValidationRequest describes one multi-file validation run
type ValidationRequest struct {
	// Paths are the files or directories to validate
	Paths []string

	// OutputFormat selects the report format
	OutputFormat OutputFormat

	// Severities filters the reported diagnostics; empty means all
	Severities []Severity

	// Recursive controls directory traversal
	Recursive bool

	// IncludePatterns and ExcludePatterns filter collected files
	IncludePatterns []string
	ExcludePatterns []string

	// NoCache bypasses the diagnostic cache for this run
	NoCache bool
}

// ProgressManager handles progress tracking for long-running operations
type ProgressManager interface {
	// StartTask creates a progress task with a description and total count
	StartTask(description string, total int) TaskProgress

	// IsInteractive returns true if progress is rendered to a terminal
	IsInteractive() bool

	// Close cleans up all tasks
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	// Increment adds n to the current progress
	Increment(n int)

	// Describe updates the current item description
	Describe(description string)

	// Complete marks the task as finished
	Complete()
}
