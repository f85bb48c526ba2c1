package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahktools/ahkcheck/app"
	"github.com/ahktools/ahkcheck/domain"
	"github.com/ahktools/ahkcheck/internal/cache"
	"github.com/ahktools/ahkcheck/internal/config"
	"github.com/ahktools/ahkcheck/internal/constants"
	"github.com/ahktools/ahkcheck/internal/parser"
	"github.com/ahktools/ahkcheck/internal/runner"
	"github.com/ahktools/ahkcheck/internal/staticcheck"
	"github.com/ahktools/ahkcheck/service"
)

// ExitError carries a specific process exit code out of a command
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

var (
	validateFormat      string
	validateSeverities  []string
	validateRecursive   bool
	validateInclude     []string
	validateExclude     []string
	validateNoCache     bool
	validateNoProgress  bool
	validateConfigPath  string
	validateInterpreter string
	validateTimeoutMs   int
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [path...]",
		Short: "Validate AutoHotkey scripts",
		Long: `Validate AutoHotkey scripts with the interpreter in check-only mode.

Exit codes:
  0 - All scripts are clean
  1 - Diagnostics were found
  2 - Validation could not run (interpreter missing, file not found, ...)

Examples:
  # Validate the current directory
  ahkcheck validate

  # Validate specific files
  ahkcheck validate main.ahk lib/util.ahk

  # Machine-readable output
  ahkcheck validate --format json src/

  # Only errors, fresh results
  ahkcheck validate --severity error --no-cache src/`,
		RunE:          runValidate,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&validateFormat, "format", "f", "",
		"Output format: text, json, yaml")
	cmd.Flags().StringSliceVarP(&validateSeverities, "severity", "s", nil,
		"Severities to report: error,warning,info,hint (default all)")
	cmd.Flags().BoolVarP(&validateRecursive, "recursive", "r", true,
		"Recurse into directories")
	cmd.Flags().StringSliceVar(&validateInclude, "include", nil,
		"Only validate files matching these glob patterns")
	cmd.Flags().StringSliceVarP(&validateExclude, "exclude", "e", nil,
		"Skip files and directories matching these patterns")
	cmd.Flags().BoolVar(&validateNoCache, "no-cache", false,
		"Bypass the diagnostic cache")
	cmd.Flags().BoolVar(&validateNoProgress, "no-progress", false,
		"Disable the progress bar")
	cmd.Flags().StringVarP(&validateConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&validateInterpreter, "interpreter", "",
		"Interpreter executable (overrides config and auto-detection)")
	cmd.Flags().IntVar(&validateTimeoutMs, "timeout-ms", 0,
		"Per-file validation timeout in milliseconds (overrides config)")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	manager, err := config.NewManager(".", validateConfigPath)
	if err != nil {
		return &ExitError{Code: constants.ExitRunError, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}
	cfg := manager.Config()

	format := resolveFormat(cfg)
	severities := resolveSeverities()

	// Progress is auto-disabled for machine formats and non-TTY output
	pm := service.NewProgressManager(!validateNoProgress && format == domain.OutputFormatText)
	defer pm.Close()

	uc, _ := buildUseCase(manager, pm)

	request := domain.ValidationRequest{
		Paths:           paths,
		OutputFormat:    format,
		Severities:      severities,
		Recursive:       validateRecursive,
		IncludePatterns: mergePatterns(validateInclude, cfg.IncludePatterns),
		ExcludePatterns: mergePatterns(validateExclude, cfg.ExcludePatterns),
		NoCache:         validateNoCache,
	}

	report, err := uc.Execute(context.Background(), request)
	if err != nil {
		return &ExitError{Code: constants.ExitRunError, Message: err.Error()}
	}
	pm.Close()

	if err := service.NewOutputFormatter().Write(report, format, os.Stdout); err != nil {
		return &ExitError{Code: constants.ExitRunError, Message: err.Error()}
	}

	exitCode := constants.ExitOK
	switch {
	case report.HasFailures():
		exitCode = constants.ExitRunError
	case report.HasFindings():
		exitCode = constants.ExitFindings
	}
	if exitCode != constants.ExitOK {
		return &ExitError{Code: exitCode}
	}
	return nil
}

// buildUseCase wires the validation pipeline from the resolved config.
// The concrete cache is returned so callers can invalidate entries.
func buildUseCase(manager *config.Manager, pm domain.ProgressManager) (*app.ValidateUseCase, *cache.Cache) {
	cfg := manager.Config()

	var diagnosticCache *cache.Cache
	if cfg.CacheEnabled {
		diagnosticCache = cache.New(cache.Options{
			TTL:        cfg.CacheTTL(),
			MaxSize:    cfg.CacheMaxEntries,
			CheckMtime: cfg.CacheCheckMtime,
			CheckHash:  cfg.CacheCheckHash,
		})
	}

	timeout := cfg.Timeout()
	if validateTimeoutMs > 0 {
		timeout = time.Duration(validateTimeoutMs) * time.Millisecond
	}

	// Avoid handing the use case a typed nil interface
	var cacheDep domain.DiagnosticCache
	if diagnosticCache != nil {
		cacheDep = diagnosticCache
	}
	uc := app.NewValidateUseCase(cacheDep, service.NewFileCollector(), pm)

	interpreterPath := func() string {
		if validateInterpreter != "" {
			return validateInterpreter
		}
		return manager.InterpreterPath()
	}
	uc.RegisterSource(app.NewInterpreterSource(
		runner.NewWithTimeout(timeout, runner.DefaultGracePeriod),
		parser.New(),
		interpreterPath,
		domain.RunOptions{Timeout: timeout},
	))
	if cfg.StaticChecks {
		uc.RegisterSource(staticcheck.New())
	}

	return uc, diagnosticCache
}

func resolveFormat(cfg config.Config) domain.OutputFormat {
	if validateFormat != "" {
		return domain.OutputFormat(validateFormat)
	}
	if cfg.OutputFormat != "" {
		return domain.OutputFormat(cfg.OutputFormat)
	}
	return domain.OutputFormatText
}

func resolveSeverities() []domain.Severity {
	severities := make([]domain.Severity, 0, len(validateSeverities))
	for _, s := range validateSeverities {
		severities = append(severities, domain.ParseSeverity(s))
	}
	return severities
}

func mergePatterns(flag, cfg []string) []string {
	if len(flag) > 0 {
		return flag
	}
	return cfg
}
