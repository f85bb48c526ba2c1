package domain

// ValidationReport is the renderable outcome of one validation run
type ValidationReport struct {
	Version     string        `json:"version" yaml:"version"`
	GeneratedAt string        `json:"generated_at" yaml:"generated_at"`
	DurationMs  int64         `json:"duration_ms" yaml:"duration_ms"`
	Files       []FileReport  `json:"files" yaml:"files"`
	Summary     ReportSummary `json:"summary" yaml:"summary"`
}

// FileReport holds the outcome for one file. RunError distinguishes
// "could not validate" from "validated and found nothing" — both carry
// zero diagnostics but mean very different things to the caller.
type FileReport struct {
	File        string       `json:"file" yaml:"file"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Count       int          `json:"count" yaml:"count"`
	Cached      bool         `json:"cached,omitempty" yaml:"cached,omitempty"`
	RunError    string       `json:"run_error,omitempty" yaml:"run_error,omitempty"`
}

// ReportSummary aggregates counts across the run
type ReportSummary struct {
	FilesValidated   int `json:"files_validated" yaml:"files_validated"`
	FilesFailed      int `json:"files_failed" yaml:"files_failed"`
	TotalDiagnostics int `json:"total_diagnostics" yaml:"total_diagnostics"`
	Errors           int `json:"errors" yaml:"errors"`
	Warnings         int `json:"warnings" yaml:"warnings"`
	Infos            int `json:"infos" yaml:"infos"`
	Hints            int `json:"hints" yaml:"hints"`
	CacheHits        int `json:"cache_hits" yaml:"cache_hits"`
}

// BuildSummary recomputes the summary from the file reports
func (r *ValidationReport) BuildSummary() {
	s := ReportSummary{}
	for _, f := range r.Files {
		if f.RunError != "" {
			s.FilesFailed++
			continue
		}
		s.FilesValidated++
		s.TotalDiagnostics += f.Count
		if f.Cached {
			s.CacheHits++
		}
		for _, d := range f.Diagnostics {
			switch d.Severity {
			case SeverityError:
				s.Errors++
			case SeverityWarning:
				s.Warnings++
			case SeverityInfo:
				s.Infos++
			case SeverityHint:
				s.Hints++
			}
		}
	}
	r.Summary = s
}

// HasFindings reports whether any file carries diagnostics
func (r *ValidationReport) HasFindings() bool {
	return r.Summary.TotalDiagnostics > 0
}

// HasFailures reports whether any file could not be validated
func (r *ValidationReport) HasFailures() bool {
	return r.Summary.FilesFailed > 0
}
