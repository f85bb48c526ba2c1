package service

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func baseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	return names
}

func TestCollectFiles_DirectFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"main.ahk": "return\n"})

	files, err := NewFileCollector().CollectFiles([]string{filepath.Join(dir, "main.ahk")}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %v", files)
	}
}

func TestCollectFiles_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.ahk":        "return\n",
		"b.ahk2":       "return\n",
		"readme.md":    "docs\n",
		"nested/c.ahk": "return\n",
	})

	files, err := NewFileCollector().CollectFiles([]string{dir}, false, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := baseNames(files)
	want := []string{"a.ahk", "b.ahk2"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestCollectFiles_RecursiveWithExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.ahk":           "return\n",
		"lib/util.ahk":    "return\n",
		"vendor/dep.ahk":  "return\n",
		"lib/skip_me.ahk": "return\n",
		"deep/x/y/z.ah2":  "return\n",
	})

	files, err := NewFileCollector().CollectFiles([]string{dir}, true, []string{"vendor", "skip_*.ahk"})
	if err != nil {
		t.Fatal(err)
	}

	got := baseNames(files)
	for _, name := range got {
		if name == "dep.ahk" || name == "skip_me.ahk" {
			t.Errorf("excluded file %s was collected", name)
		}
	}
	if len(got) != 3 {
		t.Errorf("expected 3 files, got %v", got)
	}
}

func TestCollectFiles_GitignoreFiltering(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		".gitignore":     "build/\n*.gen.ahk\n",
		"main.ahk":       "return\n",
		"out.gen.ahk":    "return\n",
		"build/tmp.ahk":  "return\n",
		"src/helper.ahk": "return\n",
	})

	files, err := NewFileCollector().CollectFiles([]string{dir}, true, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := baseNames(files)
	for _, name := range got {
		if name == "out.gen.ahk" || name == "tmp.ahk" {
			t.Errorf("gitignored file %s was collected", name)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected main.ahk and helper.ahk, got %v", got)
	}
}

func TestCollectFiles_MissingPath(t *testing.T) {
	_, err := NewFileCollector().CollectFiles([]string{"/nonexistent/path"}, false, nil)
	if err == nil {
		t.Fatal("expected an error for a missing path")
	}
}
