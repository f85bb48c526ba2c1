package service

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ahktools/ahkcheck/domain"
)

// OutputFormatterImpl renders validation reports
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// Write renders the report in the specified format
func (f *OutputFormatterImpl) Write(report *domain.ValidationReport, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return f.writeJSON(report, writer)
	case domain.OutputFormatYAML:
		return f.writeYAML(report, writer)
	case domain.OutputFormatText:
		return f.writeText(report, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// writeJSON writes the report as indented JSON
func (f *OutputFormatterImpl) writeJSON(report *domain.ValidationReport, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return domain.NewOutputError("failed to encode JSON report", err)
	}
	return nil
}

// writeYAML writes the report as YAML
func (f *OutputFormatterImpl) writeYAML(report *domain.ValidationReport, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	defer encoder.Close()
	if err := encoder.Encode(report); err != nil {
		return domain.NewOutputError("failed to encode YAML report", err)
	}
	return nil
}

// writeText writes the report as human-readable text
func (f *OutputFormatterImpl) writeText(report *domain.ValidationReport, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== Validation Report ===\n\n")
	fmt.Fprintf(writer, "Generated: %s\n", report.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n\n", report.Version)

	for _, file := range report.Files {
		if file.RunError != "" {
			fmt.Fprintf(writer, "%s: could not validate: %s\n", file.File, file.RunError)
			continue
		}
		if file.Count == 0 {
			continue
		}

		cached := ""
		if file.Cached {
			cached = " (cached)"
		}
		fmt.Fprintf(writer, "%s: %d issue(s)%s\n", file.File, file.Count, cached)
		for _, d := range file.Diagnostics {
			code := ""
			if d.Code != "" {
				code = " [" + d.Code + "]"
			}
			fmt.Fprintf(writer, "  %d:%d %s%s %s (%s)\n", d.Line, d.Column, d.Severity, code, d.Message, d.Source)
			if d.Extra != "" {
				fmt.Fprintf(writer, "      %s\n", d.Extra)
			}
		}
	}

	s := report.Summary
	fmt.Fprintf(writer, "\nSummary:\n")
	fmt.Fprintf(writer, "  Files validated: %d\n", s.FilesValidated)
	if s.FilesFailed > 0 {
		fmt.Fprintf(writer, "  Files failed: %d\n", s.FilesFailed)
	}
	fmt.Fprintf(writer, "  Diagnostics: %d (%d errors, %d warnings, %d infos, %d hints)\n",
		s.TotalDiagnostics, s.Errors, s.Warnings, s.Infos, s.Hints)
	fmt.Fprintf(writer, "  Cache hits: %d\n", s.CacheHits)
	fmt.Fprintf(writer, "  Duration: %dms\n", report.DurationMs)

	return nil
}
