package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/ahktools/ahkcheck/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleResult(message string) domain.ValidationResult {
	return domain.NewValidationResult([]domain.Diagnostic{
		{File: "x.ahk", Line: 1, Column: 1, Severity: domain.SeverityError, Message: message, Source: "ahk"},
	})
}

func TestCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.ahk", "MsgBox hi\n")

	c := New(Options{CheckMtime: true, CheckHash: true})
	want := sampleResult("round trip")
	c.Set(path, want, nil)

	got, ok := c.Get(path)
	if !ok {
		t.Fatal("expected a hit immediately after Set")
	}
	if got.Count != want.Count || got.Diagnostics[0].Message != "round trip" {
		t.Errorf("unexpected cached result: %+v", got)
	}
}

func TestCache_KeyNormalization(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.ahk", "x\n")

	// Fingerprint checks disabled so the alternate spelling needs no disk probe
	c := New(Options{})
	c.Set(path, sampleResult("normalized"), nil)

	mixed := windowsSpelling(path)
	if _, ok := c.Get(mixed); !ok {
		t.Errorf("mixed separators and casing should hit the same entry: %q vs %q", path, mixed)
	}
}

// windowsSpelling rewrites a path with upper casing and
// backslash separators the way Windows-originated callers reference files
func windowsSpelling(path string) string {
	out := make([]rune, 0, len(path))
	for _, r := range path {
		if r == '/' {
			out = append(out, '\\')
			continue
		}
		if r >= 'a' && r <= 'z' {
			r -= 32
		}
		out = append(out, r)
	}
	return string(out)
}

func TestCache_InvalidationOnContentChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.ahk", "original\n")

	c := New(Options{CheckMtime: true, CheckHash: true})
	c.Set(path, sampleResult("stale soon"), nil)

	// Content change flips the hash even if mtime granularity hides the edit
	if err := os.WriteFile(path, []byte("edited\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(path); ok {
		t.Error("expected a miss after the file content changed")
	}
	if c.Size() != 0 {
		t.Errorf("invalid entry should be discarded, size = %d", c.Size())
	}
}

func TestCache_InvalidationOnFileDeleted(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.ahk", "x\n")

	c := New(Options{CheckMtime: true})
	c.Set(path, sampleResult("gone"), nil)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(path); ok {
		t.Error("an unstattable file cannot confirm validity; expected a miss")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.ahk", "x\n")

	c := New(Options{TTL: 50 * time.Millisecond})
	c.Set(path, sampleResult("short lived"), nil)

	if _, ok := c.Get(path); !ok {
		t.Fatal("expected a hit before TTL")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get(path); ok {
		t.Error("expected a miss after TTL elapsed, file unchanged")
	}
}

func TestCache_EvictionBound(t *testing.T) {
	dir := t.TempDir()

	const maxSize = 5
	c := New(Options{MaxSize: maxSize})

	var paths []string
	for i := 0; i <= maxSize; i++ {
		path := writeFile(t, dir, fmt.Sprintf("f%d.ahk", i), "x\n")
		paths = append(paths, path)
		c.Set(path, sampleResult(fmt.Sprintf("entry %d", i)), nil)
	}

	if c.Size() != maxSize {
		t.Errorf("size must never exceed maxSize: got %d, want %d", c.Size(), maxSize)
	}

	// The first insertion carries the smallest timestamp and must be gone
	if _, ok := c.Get(paths[0]); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get(paths[maxSize]); !ok {
		t.Error("newest entry should survive eviction")
	}
}

func TestCache_SetMaxSizeShrinksImmediately(t *testing.T) {
	dir := t.TempDir()
	c := New(Options{MaxSize: 10})

	for i := 0; i < 6; i++ {
		path := writeFile(t, dir, fmt.Sprintf("f%d.ahk", i), "x\n")
		c.Set(path, sampleResult("entry"), nil)
	}

	c.SetMaxSize(2)

	if c.Size() != 2 {
		t.Errorf("expected shrink to 2 entries, got %d", c.Size())
	}
}

func TestCache_InvalidateAndPattern(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.ahk", "x\n")
	b := writeFile(t, dir, "b.ahk", "x\n")
	lib := writeFile(t, dir, "helper.lib.ahk", "x\n")

	c := New(Options{})
	for _, p := range []string{a, b, lib} {
		c.Set(p, sampleResult("entry"), nil)
	}

	c.Invalidate(a)
	if _, ok := c.Get(a); ok {
		t.Error("invalidated entry should be gone")
	}

	removed := c.InvalidatePattern(regexp.MustCompile(`\.lib\.ahk$`))
	if removed != 1 {
		t.Errorf("expected 1 pattern removal, got %d", removed)
	}
	if _, ok := c.Get(b); !ok {
		t.Error("non-matching entry should survive pattern invalidation")
	}
}

func TestCache_EvictExpired(t *testing.T) {
	dir := t.TempDir()
	c := New(Options{TTL: 30 * time.Millisecond})

	for i := 0; i < 3; i++ {
		path := writeFile(t, dir, fmt.Sprintf("f%d.ahk", i), "x\n")
		c.Set(path, sampleResult("entry"), nil)
	}

	time.Sleep(50 * time.Millisecond)

	fresh := writeFile(t, dir, "fresh.ahk", "x\n")
	c.Set(fresh, sampleResult("fresh"), nil)

	removed := c.EvictExpired()
	if removed != 3 {
		t.Errorf("expected 3 expired entries swept, got %d", removed)
	}
	if c.Size() != 1 {
		t.Errorf("expected only the fresh entry to remain, size = %d", c.Size())
	}
}

func TestCache_ContentSuppliedFingerprint(t *testing.T) {
	dir := t.TempDir()
	content := []byte("supplied content\n")
	path := writeFile(t, dir, "main.ahk", string(content))

	c := New(Options{CheckHash: true})
	// Caller supplies content, avoiding a redundant disk read
	c.Set(path, sampleResult("supplied"), content)

	if _, ok := c.Get(path); !ok {
		t.Fatal("expected a hit with caller-supplied content fingerprint")
	}

	if err := os.WriteFile(path, []byte("changed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(path); ok {
		t.Error("supplied fingerprint should still detect a later change")
	}
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.ahk", "x\n")

	c := New(Options{})
	c.Set(path, sampleResult("entry"), nil)
	c.Clear()

	if c.Size() != 0 {
		t.Errorf("expected empty cache after Clear, size = %d", c.Size())
	}
}
