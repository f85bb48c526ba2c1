package config

import (
	"fmt"
	"strings"
)

// Template renders a documented YAML configuration file seeded from cfg.
// Used by the init command.
func Template(cfg Config) string {
	var sb strings.Builder

	sb.WriteString("# ahkcheck configuration\n")
	sb.WriteString("# Values shown are the effective defaults; uncommented keys override them.\n\n")

	sb.WriteString("# Path to the interpreter executable. Empty means auto-detect:\n")
	sb.WriteString("# workspace-local installs win over user-profile installs, which win\n")
	sb.WriteString("# over system-wide ones.\n")
	fmt.Fprintf(&sb, "interpreter_path: %q\n\n", cfg.InterpreterPath)

	sb.WriteString("# Wall-clock budget for one interpreter invocation, in milliseconds.\n")
	fmt.Fprintf(&sb, "timeout_ms: %d\n\n", cfg.TimeoutMs)

	sb.WriteString("# Interpreter output encoding.\n")
	fmt.Fprintf(&sb, "encoding: %s\n\n", cfg.Encoding)

	sb.WriteString("# Diagnostic cache. TTL is in milliseconds; mtime/hash toggles control\n")
	sb.WriteString("# the two staleness probes (both enabled is the conservative default).\n")
	fmt.Fprintf(&sb, "cache_enabled: %t\n", cfg.CacheEnabled)
	fmt.Fprintf(&sb, "cache_ttl_ms: %d\n", cfg.CacheTTLMs)
	fmt.Fprintf(&sb, "cache_max_entries: %d\n", cfg.CacheMaxEntries)
	fmt.Fprintf(&sb, "cache_check_mtime: %t\n", cfg.CacheCheckMtime)
	fmt.Fprintf(&sb, "cache_check_hash: %t\n\n", cfg.CacheCheckHash)

	sb.WriteString("# Delay before re-validating after an edit burst (watch mode), ms.\n")
	fmt.Fprintf(&sb, "debounce_ms: %d\n\n", cfg.DebounceMs)

	sb.WriteString("# Built-in textual checks merged with interpreter diagnostics.\n")
	fmt.Fprintf(&sb, "static_checks: %t\n\n", cfg.StaticChecks)

	sb.WriteString("# Default report format: text, json, yaml.\n")
	fmt.Fprintf(&sb, "output_format: %s\n\n", cfg.OutputFormat)

	sb.WriteString("# File collection filters for directory validation.\n")
	sb.WriteString("include_patterns:\n")
	for _, p := range cfg.IncludePatterns {
		fmt.Fprintf(&sb, "  - %q\n", p)
	}
	sb.WriteString("exclude_patterns:\n")
	for _, p := range cfg.ExcludePatterns {
		fmt.Fprintf(&sb, "  - %q\n", p)
	}

	return sb.String()
}
