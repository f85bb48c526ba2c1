// Package staticcheck is a built-in diagnostic source running cheap
// textual checks that the interpreter does not cover. It ranks below the
// interpreter in the aggregator's priority merge, so an interpreter
// finding at the same location wins.
package staticcheck

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ahktools/ahkcheck/domain"
	"github.com/ahktools/ahkcheck/internal/constants"
)

// MaxLineLength is the advisory line length bound
const MaxLineLength = 200

// Source implements domain.DiagnosticSource
type Source struct{}

// New creates the static checks source
func New() *Source {
	return &Source{}
}

// Name returns the source identifier
func (s *Source) Name() string {
	return constants.SourceStatic
}

// Priority ranks this source below the interpreter
func (s *Source) Priority() int {
	return constants.PriorityStatic
}

// Diagnostics runs the textual checks against file
func (s *Source) Diagnostics(ctx context.Context, file string) ([]domain.Diagnostic, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, domain.NewFileNotFoundError(file, err)
	}

	lines := strings.Split(string(content), "\n")
	var diagnostics []domain.Diagnostic

	inBlockComment := false
	blockCommentStart := 0

	for i, raw := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		lineNo := i + 1

		// Block comments open and close on their own lines
		if !inBlockComment && strings.HasPrefix(trimmed, "/*") {
			inBlockComment = true
			blockCommentStart = lineNo
		}
		if inBlockComment {
			if strings.HasPrefix(trimmed, "*/") || strings.HasSuffix(trimmed, "*/") {
				inBlockComment = false
			}
			continue
		}

		if len(line) > MaxLineLength {
			diagnostics = append(diagnostics, s.diagnostic(file, lineNo, 1,
				domain.SeverityInfo,
				fmt.Sprintf("Line exceeds %d characters (%d)", MaxLineLength, len(line))))
		}

		if trimmed != "" && len(line) > len(strings.TrimRight(line, " \t")) {
			col := len(strings.TrimRight(line, " \t")) + 1
			diagnostics = append(diagnostics, s.diagnostic(file, lineNo, col,
				domain.SeverityHint, "Trailing whitespace"))
		}
	}

	if inBlockComment {
		diagnostics = append(diagnostics, s.diagnostic(file, blockCommentStart, 1,
			domain.SeverityError, "Unterminated block comment"))
	}

	return diagnostics, nil
}

func (s *Source) diagnostic(file string, line, column int, severity domain.Severity, message string) domain.Diagnostic {
	d := domain.Diagnostic{
		File:     file,
		Line:     line,
		Column:   column,
		Severity: severity,
		Message:  message,
		Source:   constants.SourceStatic,
	}
	d.Normalize()
	return d
}
