// Package config resolves and watches the typed configuration consumed by
// the validation bridge: interpreter path, process timeout, cache tuning,
// and re-validation debounce.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Configuration defaults
const (
	// DefaultTimeoutMs bounds one interpreter invocation
	DefaultTimeoutMs = 30000

	// MinTimeoutMs is the sanity floor for the timeout setting
	MinTimeoutMs = 100

	// DefaultEncoding is the interpreter output encoding
	DefaultEncoding = "utf-8"

	// DefaultCacheTTLMs is the cache entry time-to-live
	DefaultCacheTTLMs = 300000

	// DefaultCacheMaxEntries bounds the cache size
	DefaultCacheMaxEntries = 100

	// DefaultDebounceMs delays re-validation after an edit burst
	DefaultDebounceMs = 500
)

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "AHKCHECK"

// configNames are the accepted config file base names, searched in the
// working directory, then upward, then the user config directories
var configNames = []string{
	"ahkcheck.yaml",
	"ahkcheck.yml",
	".ahkcheck.yaml",
	".ahkcheck.yml",
}

// Config is the typed, validated configuration snapshot exposed to
// consumers. Snapshots are read-only; mutation goes through Manager.Set.
type Config struct {
	// InterpreterPath is the interpreter executable; empty = auto-detect
	InterpreterPath string `mapstructure:"interpreter_path" yaml:"interpreter_path"`

	// TimeoutMs bounds one validation subprocess in milliseconds
	TimeoutMs int `mapstructure:"timeout_ms" yaml:"timeout_ms"`

	// Encoding is the expected interpreter output encoding
	Encoding string `mapstructure:"encoding" yaml:"encoding"`

	// CacheEnabled toggles the diagnostic cache
	CacheEnabled bool `mapstructure:"cache_enabled" yaml:"cache_enabled"`

	// CacheTTLMs is the cache entry time-to-live in milliseconds
	CacheTTLMs int `mapstructure:"cache_ttl_ms" yaml:"cache_ttl_ms"`

	// CacheMaxEntries bounds the cache entry count
	CacheMaxEntries int `mapstructure:"cache_max_entries" yaml:"cache_max_entries"`

	// CacheCheckMtime enables modification-time invalidation
	CacheCheckMtime bool `mapstructure:"cache_check_mtime" yaml:"cache_check_mtime"`

	// CacheCheckHash enables content-hash invalidation
	CacheCheckHash bool `mapstructure:"cache_check_hash" yaml:"cache_check_hash"`

	// DebounceMs delays watch-triggered re-validation in milliseconds
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`

	// StaticChecks toggles the built-in textual checks source
	StaticChecks bool `mapstructure:"static_checks" yaml:"static_checks"`

	// OutputFormat is the default report format: text, json, yaml
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// IncludePatterns and ExcludePatterns filter directory validation
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
}

// Timeout returns the subprocess timeout as a duration
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// CacheTTL returns the cache TTL as a duration
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMs) * time.Millisecond
}

// Debounce returns the debounce interval as a duration
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		InterpreterPath: "",
		TimeoutMs:       DefaultTimeoutMs,
		Encoding:        DefaultEncoding,
		CacheEnabled:    true,
		CacheTTLMs:      DefaultCacheTTLMs,
		CacheMaxEntries: DefaultCacheMaxEntries,
		CacheCheckMtime: true,
		CacheCheckHash:  true,
		DebounceMs:      DefaultDebounceMs,
		StaticChecks:    false,
		OutputFormat:    "text",
		IncludePatterns: []string{"**/*.ahk"},
		ExcludePatterns: []string{".git", "node_modules", "vendor"},
	}
}

// ValidationResult accumulates configuration problems so a caller can
// present the complete remediation list at once
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Manager owns the resolved configuration and its change notification.
// It wraps a dedicated viper instance so concurrent managers (tests, the
// watch command) never share state.
type Manager struct {
	mu          sync.RWMutex
	v           *viper.Viper
	current     Config
	workspace   string
	subscribers []func(Config)
}

// NewManager creates a manager rooted at workspace. configFile pins an
// explicit config file; when empty the conventional locations are
// searched. A missing config file is not an error; defaults apply.
func NewManager(workspace, configFile string) (*Manager, error) {
	if workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		workspace = wd
	}

	m := &Manager{
		v:         viper.New(),
		workspace: workspace,
	}
	registerDefaults(m.v)

	m.v.SetEnvPrefix(EnvPrefix)
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()

	if configFile != "" {
		m.v.SetConfigFile(configFile)
		if err := m.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	} else if found := findConfigFile(workspace); found != "" {
		m.v.SetConfigFile(found)
		if err := m.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", found, err)
		}
	}

	if err := m.reload(); err != nil {
		return nil, err
	}

	// Hot reload: whenever the bound file changes on disk, refresh the
	// snapshot and push it to subscribers.
	if m.v.ConfigFileUsed() != "" {
		m.v.OnConfigChange(func(fsnotify.Event) {
			before := m.Config()
			if err := m.reload(); err != nil {
				return
			}
			// Set writes the file itself and notifies directly; the
			// watcher only reports edits that actually changed something,
			// so self-inflicted writes do not notify twice.
			if !reflect.DeepEqual(before, m.Config()) {
				m.notify()
			}
		})
		m.v.WatchConfig()
	}

	return m, nil
}

// registerDefaults seeds viper with the built-in configuration
func registerDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("interpreter_path", def.InterpreterPath)
	v.SetDefault("timeout_ms", def.TimeoutMs)
	v.SetDefault("encoding", def.Encoding)
	v.SetDefault("cache_enabled", def.CacheEnabled)
	v.SetDefault("cache_ttl_ms", def.CacheTTLMs)
	v.SetDefault("cache_max_entries", def.CacheMaxEntries)
	v.SetDefault("cache_check_mtime", def.CacheCheckMtime)
	v.SetDefault("cache_check_hash", def.CacheCheckHash)
	v.SetDefault("debounce_ms", def.DebounceMs)
	v.SetDefault("static_checks", def.StaticChecks)
	v.SetDefault("output_format", def.OutputFormat)
	v.SetDefault("include_patterns", def.IncludePatterns)
	v.SetDefault("exclude_patterns", def.ExcludePatterns)
}

// findConfigFile searches workspace and its ancestors, then the user
// config directories, for a conventional config file
func findConfigFile(workspace string) string {
	dir := workspace
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		for _, name := range configNames {
			path := filepath.Join(xdg, "ahkcheck", name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		for _, name := range configNames {
			path := filepath.Join(home, ".config", "ahkcheck", name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// reload refreshes the typed snapshot from the viper store
func (m *Manager) reload() error {
	cfg := Default()
	if err := m.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	m.mu.Lock()
	m.current = cfg
	m.mu.Unlock()
	return nil
}

// Config returns the current typed snapshot
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Get returns the raw value for key from the underlying store
func (m *Manager) Get(key string) any {
	return m.v.Get(key)
}

// Set updates key, persists the change to the bound config file when one
// exists, refreshes the snapshot, and notifies subscribers
func (m *Manager) Set(key string, value any) error {
	m.v.Set(key, value)

	if m.v.ConfigFileUsed() != "" {
		if err := m.v.WriteConfig(); err != nil {
			return fmt.Errorf("persist config: %w", err)
		}
	}

	if err := m.reload(); err != nil {
		return err
	}
	m.notify()
	return nil
}

// Reset discards all overrides and returns to the built-in defaults.
// The bound config file, if any, is left untouched on disk.
func (m *Manager) Reset() {
	v := viper.New()
	registerDefaults(v)

	m.mu.Lock()
	m.v = v
	m.current = Default()
	m.mu.Unlock()
	m.notify()
}

// IsConfigured reports whether an interpreter path resolves, either from
// an explicit setting or by auto-detection
func (m *Manager) IsConfigured() bool {
	return m.InterpreterPath() != ""
}

// InterpreterPath resolves the interpreter executable: the explicit
// setting wins, otherwise the auto-detection candidates are walked
func (m *Manager) InterpreterPath() string {
	if explicit := m.Config().InterpreterPath; explicit != "" {
		return explicit
	}
	return m.DetectInterpreterPath()
}

// DetectInterpreterPath walks the ordered candidate list and returns the
// first existing path, or empty when nothing is found. Workspace-local
// installs override user-profile installs, which override system-wide
// ones.
func (m *Manager) DetectInterpreterPath() string {
	for _, candidate := range m.DetectionCandidates() {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	// PATH lookup is the last resort after the conventional locations
	for _, name := range []string{"AutoHotkey.exe", "autohotkey"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// DetectionCandidates returns the ordered auto-detection candidate list
func (m *Manager) DetectionCandidates() []string {
	candidates := []string{
		// Workspace-relative conventional locations
		filepath.Join(m.workspace, "AutoHotkey.exe"),
		filepath.Join(m.workspace, "ahk", "AutoHotkey.exe"),
		filepath.Join(m.workspace, "bin", "AutoHotkey.exe"),
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, "Documents", "AutoHotkey", "AutoHotkey.exe"),
			filepath.Join(home, "AutoHotkey", "AutoHotkey.exe"),
		)
	}

	for _, root := range programFilesRoots() {
		candidates = append(candidates,
			filepath.Join(root, "AutoHotkey", "AutoHotkey.exe"),
			filepath.Join(root, "AutoHotkey", "v2", "AutoHotkey.exe"),
		)
	}

	// Fixed development install locations
	candidates = append(candidates,
		`C:\tools\AutoHotkey\AutoHotkey.exe`,
		"/usr/local/bin/autohotkey",
		"/usr/bin/autohotkey",
	)
	return candidates
}

// programFilesRoots lists platform install roots, preferring the
// environment-provided ones
func programFilesRoots() []string {
	var roots []string
	for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)"} {
		if dir := os.Getenv(env); dir != "" {
			roots = append(roots, dir)
		}
	}
	if len(roots) == 0 {
		roots = []string{`C:\Program Files`, `C:\Program Files (x86)`}
	}
	return roots
}

// Validate reports every configuration problem at once rather than
// stopping at the first
func (m *Manager) Validate() ValidationResult {
	cfg := m.Config()
	var errs []string

	if cfg.InterpreterPath == "" {
		if m.DetectInterpreterPath() == "" {
			errs = append(errs, "interpreter path is not set and auto-detection found no candidates")
		}
	} else if info, err := os.Stat(cfg.InterpreterPath); err != nil || info.IsDir() {
		errs = append(errs, fmt.Sprintf("interpreter path %s does not exist on disk", cfg.InterpreterPath))
	}

	if cfg.TimeoutMs < MinTimeoutMs {
		errs = append(errs, fmt.Sprintf("timeout_ms must be at least %d, got %d", MinTimeoutMs, cfg.TimeoutMs))
	}

	if cfg.CacheTTLMs < 0 {
		errs = append(errs, fmt.Sprintf("cache_ttl_ms cannot be negative, got %d", cfg.CacheTTLMs))
	}

	if cfg.CacheMaxEntries < 1 {
		errs = append(errs, fmt.Sprintf("cache_max_entries must be at least 1, got %d", cfg.CacheMaxEntries))
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// OnChange subscribes to configuration changes. Callbacks run on the
// goroutine that triggered the change.
func (m *Manager) OnChange(fn func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// ConfigFileUsed returns the bound config file path, if any
func (m *Manager) ConfigFileUsed() string {
	return m.v.ConfigFileUsed()
}

// notify pushes the current snapshot to all subscribers
func (m *Manager) notify() {
	m.mu.RLock()
	subs := make([]func(Config), len(m.subscribers))
	copy(subs, m.subscribers)
	cfg := m.current
	m.mu.RUnlock()

	for _, fn := range subs {
		fn(cfg)
	}
}
