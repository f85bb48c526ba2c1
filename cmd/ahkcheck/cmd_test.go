package main

import (
	"testing"

	"github.com/ahktools/ahkcheck/domain"
	"github.com/ahktools/ahkcheck/internal/config"
)

func TestValidateCmd_FlagsExist(t *testing.T) {
	cmd := validateCmd()

	expectedFlags := []string{
		"format", "severity", "recursive", "include", "exclude",
		"no-cache", "no-progress", "config", "interpreter", "timeout-ms",
	}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestValidateCmd_ShortFlags(t *testing.T) {
	cmd := validateCmd()

	shortFlags := map[string]string{
		"f": "format",
		"s": "severity",
		"r": "recursive",
		"e": "exclude",
		"c": "config",
	}
	for short, long := range shortFlags {
		if cmd.Flags().ShorthandLookup(short) == nil {
			t.Errorf("Missing short flag -%s for --%s", short, long)
		}
	}
}

func TestValidateCmd_DefaultValues(t *testing.T) {
	cmd := validateCmd()

	recursiveFlag := cmd.Flags().Lookup("recursive")
	if recursiveFlag == nil {
		t.Fatal("recursive flag not found")
	}
	if recursiveFlag.DefValue != "true" {
		t.Errorf("Expected recursive to default to true, got %s", recursiveFlag.DefValue)
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 2, Message: "interpreter missing"}
	if err.Error() != "interpreter missing" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		cfg      string
		expected domain.OutputFormat
	}{
		{"flag wins", "json", "yaml", domain.OutputFormatJSON},
		{"config fallback", "", "yaml", domain.OutputFormatYAML},
		{"default text", "", "", domain.OutputFormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validateFormat = tt.flag
			defer func() { validateFormat = "" }()

			got := resolveFormat(config.Config{OutputFormat: tt.cfg})
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestResolveSeverities(t *testing.T) {
	validateSeverities = []string{"error", "warn"}
	defer func() { validateSeverities = nil }()

	got := resolveSeverities()
	if len(got) != 2 || got[0] != domain.SeverityError || got[1] != domain.SeverityWarning {
		t.Errorf("unexpected severities: %v", got)
	}
}

func TestMergePatterns(t *testing.T) {
	if got := mergePatterns([]string{"a"}, []string{"b"}); len(got) != 1 || got[0] != "a" {
		t.Errorf("flag patterns should win, got %v", got)
	}
	if got := mergePatterns(nil, []string{"b"}); len(got) != 1 || got[0] != "b" {
		t.Errorf("config patterns should be the fallback, got %v", got)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	for name, build := range map[string]func() interface{ Name() string }{
		"validate": func() interface{ Name() string } { return validateCmd() },
		"watch":    func() interface{ Name() string } { return watchCmd() },
		"detect":   func() interface{ Name() string } { return detectCmd() },
		"init":     func() interface{ Name() string } { return initCmd() },
		"config":   func() interface{ Name() string } { return configCmd() },
		"version":  func() interface{ Name() string } { return versionCmd() },
	} {
		if got := build().Name(); got != name {
			t.Errorf("expected command %s, got %s", name, got)
		}
	}
}
