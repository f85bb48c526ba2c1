// Package parser converts raw interpreter output into normalized
// diagnostics. Two producer formats are accepted without the caller
// pre-declaring which one is in use: a structured JSON object carrying an
// "errors" array, and the classic line-oriented error format. Malformed
// input never fails a request; it degrades to an empty diagnostic set.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ahktools/ahkcheck/domain"
)

// maxJSONCandidates bounds the scan for a JSON object embedded in banner
// noise. Producers prepend at most a few lines of free text; scanning
// every `{` in arbitrarily large garbage would be wasted work.
const maxJSONCandidates = 32

// Line-oriented wire format: FILE (LINE) : ==> [Warning: ]MESSAGE
var lineFormat = regexp.MustCompile(`^(.*?)\s*\((\d+)\)\s*:\s*==>\s*(Warning:\s*)?(.+)$`)

// Continuation line attached to the preceding diagnostic
var continuationFormat = regexp.MustCompile(`^\s*Specifically:\s*(.+)$`)

// Embedded error code forms: "[E001] msg" and "Error 001: msg"
var (
	bracketCodeFormat = regexp.MustCompile(`^\[([EWew])(\d+)\]\s*(.*)$`)
	wordCodeFormat    = regexp.MustCompile(`^(?i)(Error|Warning)\s+(\d+)\s*:\s*(.*)$`)
)

// Parser implements domain.ErrorParser
type Parser struct{}

// New creates a parser
func New() *Parser {
	return &Parser{}
}

// Parse converts raw process output into a normalized ValidationResult.
// Output starting with "{" is tried as JSON first and falls through to
// the line-oriented parser on any shape mismatch, so a producer that
// crashes mid-emit cannot cause total parse failure.
func (p *Parser) Parse(raw, defaultFile string) domain.ValidationResult {
	trimmed := strings.TrimSpace(raw)

	// Banner text may precede the JSON object, so the structured path is
	// also tried when an "errors" key appears anywhere in the output.
	if strings.HasPrefix(trimmed, "{") || strings.Contains(raw, `"errors"`) {
		if result, ok := p.parseStructured(raw, defaultFile); ok {
			return result
		}
	}
	return p.parseLines(raw, defaultFile)
}

// parseStructured locates and parses the JSON object carrying "errors"
func (p *Parser) parseStructured(raw, defaultFile string) (domain.ValidationResult, bool) {
	obj, ok := findErrorsObject(raw)
	if !ok {
		return domain.ValidationResult{}, false
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(obj["errors"], &entries); err != nil {
		return domain.ValidationResult{}, false
	}

	diagnostics := make([]domain.Diagnostic, 0, len(entries))
	for _, entry := range entries {
		var fields map[string]any
		if err := json.Unmarshal(entry, &fields); err != nil {
			// One malformed element does not poison the rest
			continue
		}
		diagnostics = append(diagnostics, normalizeEntry(fields, defaultFile))
	}

	domain.SortDiagnostics(diagnostics)
	return domain.NewValidationResult(diagnostics), true
}

// findErrorsObject scans raw for a decodable JSON object that contains an
// "errors" key. Producers sometimes prepend banner text, so every `{` up
// to the candidate bound is tried as an object start.
func findErrorsObject(raw string) (map[string]json.RawMessage, bool) {
	s := raw
	for i := 0; i < maxJSONCandidates; i++ {
		idx := strings.IndexByte(s, '{')
		if idx < 0 {
			return nil, false
		}

		var obj map[string]json.RawMessage
		dec := json.NewDecoder(strings.NewReader(s[idx:]))
		if err := dec.Decode(&obj); err == nil {
			if _, ok := obj["errors"]; ok {
				return obj, true
			}
		}
		s = s[idx+1:]
	}
	return nil, false
}

// normalizeEntry converts one loose JSON error object into a Diagnostic,
// applying the defaulting rules for missing or mistyped fields.
func normalizeEntry(fields map[string]any, defaultFile string) domain.Diagnostic {
	d := domain.Diagnostic{
		File:      stringField(fields, "file", defaultFile),
		Line:      intField(fields, "line", 1),
		Column:    intField(fields, "column", 1),
		EndLine:   intField(fields, "endLine", 0),
		EndColumn: intField(fields, "endColumn", 0),
		Severity:  domain.ParseSeverity(stringField(fields, "severity", "error")),
		Message:   stringField(fields, "message", "Unknown error"),
		Extra:     stringField(fields, "extra", ""),
		Source:    stringField(fields, "source", domain.DefaultSource),
		Code:      stringField(fields, "code", ""),
	}
	d.Normalize()
	return d
}

// stringField reads a string field with a fallback for missing, empty,
// or mistyped values
func stringField(fields map[string]any, key, fallback string) string {
	if s, ok := fields[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// intField coerces a numeric field to int. Numbers arrive as float64
// from encoding/json; numeric strings are accepted too. Anything else
// takes the fallback.
func intField(fields map[string]any, key string, fallback int) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

// parseLines scans the line-oriented format, attaching "Specifically:"
// continuation lines to the preceding diagnostic. Lines matching neither
// pattern are noise and are skipped.
func (p *Parser) parseLines(raw, defaultFile string) domain.ValidationResult {
	lines := strings.Split(raw, "\n")
	var diagnostics []domain.Diagnostic

	for i := 0; i < len(lines); i++ {
		m := lineFormat.FindStringSubmatch(strings.TrimRight(lines[i], "\r"))
		if m == nil {
			continue
		}

		line, err := strconv.Atoi(m[2])
		if err != nil || line < 1 {
			line = 1
		}

		severity := domain.SeverityError
		if m[3] != "" {
			severity = domain.SeverityWarning
		}

		file := strings.TrimSpace(m[1])
		if file == "" {
			file = defaultFile
		}

		d := domain.Diagnostic{
			File:     file,
			Line:     line,
			Column:   1,
			Severity: severity,
			Message:  strings.TrimSpace(m[4]),
			Source:   domain.DefaultSource,
		}

		// A continuation line belongs to this diagnostic, never to the
		// scan: advance past it so it cannot match as a new finding.
		if i+1 < len(lines) {
			if c := continuationFormat.FindStringSubmatch(strings.TrimRight(lines[i+1], "\r")); c != nil {
				d.Extra = strings.TrimSpace(c[1])
				i++
			}
		}

		d.Normalize()
		diagnostics = append(diagnostics, d)
	}

	domain.SortDiagnostics(diagnostics)
	return domain.NewValidationResult(diagnostics)
}

// ExtractCode pulls an embedded error code out of a message. Supported
// forms are "[E001] msg" and "Error 001: msg"; the returned code is
// normalized to E###/W### and the message is returned without the code
// marker. Messages without a recognizable code come back unchanged.
func ExtractCode(message string) (code, clean string) {
	if m := bracketCodeFormat.FindStringSubmatch(message); m != nil {
		return normalizeCode(m[1], m[2]), strings.TrimSpace(m[3])
	}
	if m := wordCodeFormat.FindStringSubmatch(message); m != nil {
		return normalizeCode(m[1][:1], m[2]), strings.TrimSpace(m[3])
	}
	return "", message
}

// normalizeCode builds an E###/W### style code from a kind letter and a
// digit run
func normalizeCode(kind, digits string) string {
	letter := strings.ToUpper(kind)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return letter + digits
	}
	return fmt.Sprintf("%s%03d", letter, n)
}
