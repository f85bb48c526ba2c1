package domain

import (
	"sort"
	"strings"
)

// Severity represents the severity level of a diagnostic
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// severityRanks orders severities from most to least severe
var severityRanks = map[Severity]int{
	SeverityError:   0,
	SeverityWarning: 1,
	SeverityInfo:    2,
	SeverityHint:    3,
}

// Rank returns the ordering rank of the severity (lower is more severe).
// Unknown severities rank as errors.
func (s Severity) Rank() int {
	if r, ok := severityRanks[s]; ok {
		return r
	}
	return 0
}

// ParseSeverity normalizes a producer-supplied severity string.
// Unrecognized values normalize to SeverityError.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "error", "err":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	case "info", "information":
		return SeverityInfo
	case "hint":
		return SeverityHint
	default:
		return SeverityError
	}
}

// DefaultSource is the source identifier for diagnostics produced by the
// external interpreter.
const DefaultSource = "ahk"

// Diagnostic represents a single reported issue at a source location
type Diagnostic struct {
	// File is the absolute or workspace-relative path
	File string `json:"file"`

	// Line and Column are 1-based source positions
	Line   int `json:"line"`
	Column int `json:"column"`

	// EndLine and EndColumn default to Line/Column when the producer
	// omits them
	EndLine   int `json:"end_line"`
	EndColumn int `json:"end_column"`

	// Severity is one of error, warning, info, hint
	Severity Severity `json:"severity"`

	// Message is the human-readable description
	Message string `json:"message"`

	// Extra holds supplementary detail (e.g. a "Specifically:" line)
	Extra string `json:"extra,omitempty"`

	// Source identifies the tool that produced the diagnostic
	Source string `json:"source"`

	// Code is an optional machine-readable error code
	Code string `json:"code,omitempty"`
}

// Normalize clamps positions to 1-based values and applies range defaults.
// EndLine never ends up before Line.
func (d *Diagnostic) Normalize() {
	if d.Line < 1 {
		d.Line = 1
	}
	if d.Column < 1 {
		d.Column = 1
	}
	if d.EndLine < d.Line {
		d.EndLine = d.Line
	}
	if d.EndColumn < 1 {
		d.EndColumn = d.Column
	}
	if d.Severity == "" {
		d.Severity = SeverityError
	}
	if d.Message == "" {
		d.Message = "Unknown error"
	}
	if d.Source == "" {
		d.Source = DefaultSource
	}
}

// ValidationResult represents the outcome of validating one file
type ValidationResult struct {
	// Diagnostics is ordered by (file, line, column)
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Count duplicates len(Diagnostics) for producers that report it
	// directly
	Count int `json:"count"`

	// Duration is the validation wall-clock time in milliseconds
	Duration int64 `json:"duration_ms,omitempty"`

	// Cached indicates the result was served from the cache
	Cached bool `json:"cached,omitempty"`
}

// NewValidationResult builds a result with Count kept consistent
func NewValidationResult(diagnostics []Diagnostic) ValidationResult {
	return ValidationResult{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// HasErrors reports whether any diagnostic has error severity
func (r ValidationResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// SortDiagnostics orders diagnostics by (file, line, column) in place.
// File comparison is case-insensitive to match cache key normalization.
func SortDiagnostics(diagnostics []Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		fi := strings.ToLower(diagnostics[i].File)
		fj := strings.ToLower(diagnostics[j].File)
		if fi != fj {
			return fi < fj
		}
		if diagnostics[i].Line != diagnostics[j].Line {
			return diagnostics[i].Line < diagnostics[j].Line
		}
		return diagnostics[i].Column < diagnostics[j].Column
	})
}

// GroupByFile groups diagnostics under a case-insensitive file key
func GroupByFile(diagnostics []Diagnostic) map[string][]Diagnostic {
	groups := make(map[string][]Diagnostic)
	for _, d := range diagnostics {
		key := strings.ToLower(d.File)
		groups[key] = append(groups[key], d)
	}
	return groups
}

// FilterBySeverity returns the diagnostics whose severity is in the
// requested set. An empty set returns all diagnostics.
func FilterBySeverity(diagnostics []Diagnostic, severities ...Severity) []Diagnostic {
	if len(severities) == 0 {
		return diagnostics
	}
	wanted := make(map[Severity]bool, len(severities))
	for _, s := range severities {
		wanted[s] = true
	}
	filtered := make([]Diagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		if wanted[d.Severity] {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
