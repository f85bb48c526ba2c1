package app

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ahktools/ahkcheck/domain"
	"github.com/ahktools/ahkcheck/internal/cache"
	"github.com/ahktools/ahkcheck/internal/constants"
	"github.com/ahktools/ahkcheck/internal/version"
)

// FileCollector resolves paths into validatable script files
type FileCollector interface {
	CollectFiles(paths []string, recursive bool, excludePatterns []string) ([]string, error)
}

// ValidateUseCase orchestrates validation: cache lookup, diagnostic
// source fan-out, priority merge, and report assembly. Concurrent
// requests for the same file share one underlying validation.
type ValidateUseCase struct {
	cache     domain.DiagnosticCache
	collector FileCollector
	progress  domain.ProgressManager

	mu      sync.Mutex
	sources []registeredSource

	group       singleflight.Group
	concurrency int
}

type registeredSource struct {
	source domain.DiagnosticSource
	order  int
}

// NewValidateUseCase creates a new validate use case. cache may be nil
// to disable caching entirely.
func NewValidateUseCase(diagnosticCache domain.DiagnosticCache, collector FileCollector, progress domain.ProgressManager) *ValidateUseCase {
	return &ValidateUseCase{
		cache:       diagnosticCache,
		collector:   collector,
		progress:    progress,
		concurrency: runtime.NumCPU(),
	}
}

// SetConcurrency bounds the multi-file fan-out
func (uc *ValidateUseCase) SetConcurrency(n int) {
	if n > 0 {
		uc.concurrency = n
	}
}

// RegisterSource adds a diagnostic source. Sources with higher priority
// win merge collisions; ties go to the earlier registration.
func (uc *ValidateUseCase) RegisterSource(source domain.DiagnosticSource) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.sources = append(uc.sources, registeredSource{source: source, order: len(uc.sources)})
	sort.SliceStable(uc.sources, func(i, j int) bool {
		if uc.sources[i].source.Priority() != uc.sources[j].source.Priority() {
			return uc.sources[i].source.Priority() > uc.sources[j].source.Priority()
		}
		return uc.sources[i].order < uc.sources[j].order
	})
}

// ValidateFile validates one file, consulting the cache first. The
// returned result carries Cached=true when served from the cache.
func (uc *ValidateUseCase) ValidateFile(ctx context.Context, file string, noCache bool) (domain.ValidationResult, error) {
	if uc.cache != nil && !noCache {
		if cached, ok := uc.cache.Get(file); ok {
			cached.Cached = true
			return cached, nil
		}
	}

	key := cache.NormalizeKey(file)
	v, err, _ := uc.group.Do(key, func() (any, error) {
		return uc.runSources(ctx, file, noCache)
	})
	if err != nil {
		return domain.ValidationResult{}, err
	}
	return v.(domain.ValidationResult), nil
}

// runSources queries every registered source and merges the findings
func (uc *ValidateUseCase) runSources(ctx context.Context, file string, noCache bool) (domain.ValidationResult, error) {
	uc.mu.Lock()
	sources := make([]registeredSource, len(uc.sources))
	copy(sources, uc.sources)
	uc.mu.Unlock()

	if len(sources) == 0 {
		return domain.ValidationResult{}, domain.NewValidationError("no diagnostic sources registered")
	}

	start := time.Now()
	merged := make(map[collisionKey]mergedDiagnostic)
	var ordered []collisionKey

	for _, reg := range sources {
		diags, err := reg.source.Diagnostics(ctx, file)
		if err != nil {
			// The interpreter is authoritative; if it cannot run the
			// validation fails. Auxiliary source failures are tolerated.
			if reg.source.Name() == constants.SourceInterpreter {
				return domain.ValidationResult{}, err
			}
			continue
		}
		for _, d := range diags {
			d.Normalize()
			key := collisionKeyFor(d)
			existing, seen := merged[key]
			if !seen {
				merged[key] = mergedDiagnostic{diag: d, priority: reg.source.Priority(), order: reg.order}
				ordered = append(ordered, key)
				continue
			}
			if reg.source.Priority() > existing.priority {
				merged[key] = mergedDiagnostic{diag: d, priority: reg.source.Priority(), order: reg.order}
			}
		}
	}

	diagnostics := make([]domain.Diagnostic, 0, len(ordered))
	for _, key := range ordered {
		diagnostics = append(diagnostics, merged[key].diag)
	}
	domain.SortDiagnostics(diagnostics)

	result := domain.NewValidationResult(diagnostics)
	result.Duration = time.Since(start).Milliseconds()

	if uc.cache != nil && !noCache {
		uc.cache.Set(file, result, nil)
	}
	return result, nil
}

// collisionKey identifies overlapping findings across sources
type collisionKey struct {
	file   string
	line   int
	column int
}

type mergedDiagnostic struct {
	diag     domain.Diagnostic
	priority int
	order    int
}

func collisionKeyFor(d domain.Diagnostic) collisionKey {
	return collisionKey{
		file:   cache.NormalizeKey(d.File),
		line:   d.Line,
		column: d.Column,
	}
}

// Execute validates every script file reachable from the request paths
// and assembles the report
func (uc *ValidateUseCase) Execute(ctx context.Context, request domain.ValidationRequest) (*domain.ValidationReport, error) {
	start := time.Now()

	files, err := uc.collector.CollectFiles(request.Paths, request.Recursive, request.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to collect script files: %w", err)
	}
	files = applyIncludePatterns(files, request.IncludePatterns)
	if len(files) == 0 {
		return nil, domain.NewValidationError("no AutoHotkey script files found in the specified paths")
	}

	task := uc.progress.StartTask("Validating scripts", len(files))
	defer task.Complete()

	reports := make([]domain.FileReport, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			task.Describe(fmt.Sprintf("Validating %s", file))
			defer task.Increment(1)

			result, err := uc.ValidateFile(gctx, file, request.NoCache)
			if err != nil {
				reports[i] = domain.FileReport{File: file, RunError: err.Error()}
				return nil
			}

			diags := result.Diagnostics
			if len(request.Severities) > 0 {
				diags = domain.FilterBySeverity(diags, request.Severities...)
			}
			reports[i] = domain.FileReport{
				File:        file,
				Diagnostics: diags,
				Count:       len(diags),
				Cached:      result.Cached,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool {
		return strings.ToLower(reports[i].File) < strings.ToLower(reports[j].File)
	})

	report := &domain.ValidationReport{
		Version:     version.Version,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		DurationMs:  time.Since(start).Milliseconds(),
		Files:       reports,
	}
	report.BuildSummary()
	return report, nil
}

// applyIncludePatterns keeps only files matching one of the patterns;
// empty patterns keep everything
func applyIncludePatterns(files, patterns []string) []string {
	if len(patterns) == 0 {
		return files
	}
	kept := files[:0]
	for _, f := range files {
		for _, pattern := range patterns {
			if matchPattern(pattern, f) {
				kept = append(kept, f)
				break
			}
		}
	}
	return kept
}

// matchPattern matches path against a glob. Plain patterns apply to the
// base name; slash-containing patterns apply to the slash-normalized
// path, with a leading "**/" matching at any depth including the root.
func matchPattern(pattern, path string) bool {
	if !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		return err == nil && matched
	}

	normalized := strings.ReplaceAll(path, `\`, "/")
	if rest, found := strings.CutPrefix(pattern, "**/"); found {
		segments := strings.Split(normalized, "/")
		for i := range segments {
			matched, err := filepath.Match(rest, strings.Join(segments[i:], "/"))
			if err == nil && matched {
				return true
			}
		}
		return false
	}

	matched, err := filepath.Match(pattern, normalized)
	return err == nil && matched
}
