package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahktools/ahkcheck/domain"
	"github.com/ahktools/ahkcheck/internal/constants"
)

// InterpreterSource produces diagnostics by running the AutoHotkey
// interpreter in check-only mode and parsing its output. It is the
// highest-priority source: the interpreter is the authority on syntax.
type InterpreterSource struct {
	runner          domain.ProcessRunner
	parser          domain.ErrorParser
	interpreterPath func() string
	opts            domain.RunOptions
}

// NewInterpreterSource creates the interpreter-backed diagnostic source.
// interpreterPath is resolved per call so config changes take effect
// without rebuilding the source.
func NewInterpreterSource(runner domain.ProcessRunner, parser domain.ErrorParser, interpreterPath func() string, opts domain.RunOptions) *InterpreterSource {
	return &InterpreterSource{
		runner:          runner,
		parser:          parser,
		interpreterPath: interpreterPath,
		opts:            opts,
	}
}

// Name returns the diagnostic source identifier
func (s *InterpreterSource) Name() string {
	return constants.SourceInterpreter
}

// Priority returns the merge priority
func (s *InterpreterSource) Priority() int {
	return constants.PriorityInterpreter
}

// Diagnostics validates file with the interpreter
func (s *InterpreterSource) Diagnostics(ctx context.Context, file string) ([]domain.Diagnostic, error) {
	interpreter := s.interpreterPath()
	if interpreter == "" {
		return nil, domain.NewInterpreterError("no interpreter configured; set interpreter_path or install AutoHotkey", nil)
	}

	result := s.runner.RunValidation(ctx, interpreter, file, s.opts)
	if result.TimedOut {
		return nil, domain.NewInterpreterError(fmt.Sprintf("validation timed out after %s", result.Duration.Round(time.Millisecond)), nil)
	}
	if !result.Executed() {
		return nil, domain.NewInterpreterError("failed to launch interpreter: "+strings.TrimSpace(result.Stderr), nil)
	}

	// /ErrorStdOut redirects diagnostics to stdout; older builds still
	// write to stderr
	raw := result.Stdout
	if strings.TrimSpace(raw) == "" {
		raw = result.Stderr
	}

	parsed := s.parser.Parse(raw, file)
	return parsed.Diagnostics, nil
}
