// Package cache stores validation results keyed by file path, bounded by
// TTL and capacity. Entries carry modification-time and content-hash
// fingerprints of the validated file; a stale fingerprint invalidates the
// entry on read. Validating a file costs a process spawn plus interpreter
// startup, so even a short-lived cache pays for itself.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ahktools/ahkcheck/domain"
)

// Defaults applied when Options fields are zero
const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 100
)

// Options configures a Cache
type Options struct {
	// TTL is the maximum entry age; zero means DefaultTTL, negative
	// disables age-based expiry
	TTL time.Duration

	// MaxSize bounds the entry count; zero means DefaultMaxSize
	MaxSize int

	// CheckMtime enables modification-time invalidation (a stat per Get)
	CheckMtime bool

	// CheckHash enables content-hash invalidation (a full read per Get).
	// The digest is MD5: a change detector, not a security boundary.
	CheckHash bool
}

// entry wraps one cached ValidationResult with its fingerprints
type entry struct {
	data      domain.ValidationResult
	timestamp time.Time
	seq       uint64 // insertion order, breaks timestamp ties on eviction

	fileHash  string // empty = content fingerprint unavailable
	fileMtime time.Time
	hasMtime  bool
}

// Cache implements domain.DiagnosticCache. All operations are safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextSeq uint64

	ttl        time.Duration
	maxSize    int
	checkMtime bool
	checkHash  bool
}

// New creates a cache. Zero option fields take the package defaults.
func New(opts Options) *Cache {
	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		entries:    make(map[string]*entry),
		ttl:        ttl,
		maxSize:    maxSize,
		checkMtime: opts.CheckMtime,
		checkHash:  opts.CheckHash,
	}
}

// NormalizeKey lower-cases a path and flattens backslashes to forward
// slashes so the same file cached under mixed separators or casing hits
// one entry.
func NormalizeKey(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, `\`, "/"))
}

// Get returns the cached result for path. Expired entries and entries
// whose enabled fingerprint checks no longer pass are discarded and
// reported as a miss; a file that cannot be probed at all is treated the
// same way.
func (c *Cache) Get(path string) (domain.ValidationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := NormalizeKey(path)
	e, ok := c.entries[key]
	if !ok {
		return domain.ValidationResult{}, false
	}

	if c.ttl > 0 && time.Since(e.timestamp) > c.ttl {
		delete(c.entries, key)
		return domain.ValidationResult{}, false
	}

	if !c.fingerprintsValid(e, path) {
		delete(c.entries, key)
		return domain.ValidationResult{}, false
	}

	return e.data, true
}

// fingerprintsValid runs the enabled invalidation probes. Both checks
// must pass when both are enabled; a check whose fingerprint could not be
// captured at Set time is skipped rather than failed.
func (c *Cache) fingerprintsValid(e *entry, path string) bool {
	if c.checkMtime && e.hasMtime {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if !info.ModTime().Equal(e.fileMtime) {
			return false
		}
	}

	if c.checkHash && e.fileHash != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		if hashContent(content) != e.fileHash {
			return false
		}
	}

	return true
}

// Set stores result for path, evicting the oldest entry (smallest
// insertion timestamp) when at capacity. Fingerprints are captured from
// content when supplied, otherwise from a fresh disk probe; a failed
// capture disables that invalidation channel for this entry only.
func (c *Cache) Set(path string, result domain.ValidationResult, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := NormalizeKey(path)
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	e := &entry{
		data:      result,
		timestamp: time.Now(),
		seq:       c.nextSeq,
	}
	c.nextSeq++

	if c.checkMtime {
		if info, err := os.Stat(path); err == nil {
			e.fileMtime = info.ModTime()
			e.hasMtime = true
		}
	}
	if c.checkHash {
		if content != nil {
			e.fileHash = hashContent(content)
		} else if data, err := os.ReadFile(path); err == nil {
			e.fileHash = hashContent(data)
		}
	}

	c.entries[key] = e
}

// Invalidate removes the entry for path, if present
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, NormalizeKey(path))
}

// InvalidatePattern removes all entries whose normalized key matches
// pattern and returns how many were removed
func (c *Cache) InvalidatePattern(pattern *regexp.Regexp) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if pattern.MatchString(key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// EvictExpired sweeps all entries past TTL in one pass and returns the
// number removed. Complements the lazy invalidation done by Get for
// callers running periodic maintenance.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl <= 0 {
		return 0
	}

	removed := 0
	now := time.Now()
	for key, e := range c.entries {
		if now.Sub(e.timestamp) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// SetMaxSize changes the capacity, shrinking immediately by repeated
// oldest-eviction when the new limit is below current occupancy
func (c *Cache) SetMaxSize(maxSize int) {
	if maxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxSize = maxSize
	for len(c.entries) > c.maxSize {
		c.evictOldestLocked()
	}
}

// Size returns the current entry count
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldestLocked removes the entry with the smallest insertion
// timestamp. Eviction is by insertion age, not access recency.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest *entry
	for key, e := range c.entries {
		if oldest == nil || e.timestamp.Before(oldest.timestamp) ||
			(e.timestamp.Equal(oldest.timestamp) && e.seq < oldest.seq) {
			oldestKey = key
			oldest = e
		}
	}
	if oldest != nil {
		delete(c.entries, oldestKey)
	}
}

// hashContent computes the content fingerprint
func hashContent(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}
