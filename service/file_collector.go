package service

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ahktools/ahkcheck/domain"
)

// FileCollectorImpl collects validatable script files from paths,
// honoring exclude patterns and the root's .gitignore
type FileCollectorImpl struct{}

// NewFileCollector creates a new file collector
func NewFileCollector() *FileCollectorImpl {
	return &FileCollectorImpl{}
}

// CollectFiles resolves paths into a list of script files. Paths that
// are already files are returned directly; directories are walked.
func (c *FileCollectorImpl) CollectFiles(paths []string, recursive bool, excludePatterns []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if !info.IsDir() {
			if c.isScriptFile(path) && !c.isExcluded(path, excludePatterns) {
				files = append(files, path)
			}
			continue
		}

		collected, err := c.collectFromDirectory(path, recursive, excludePatterns)
		if err != nil {
			return nil, err
		}
		files = append(files, collected...)
	}

	return files, nil
}

// collectFromDirectory walks dir, applying exclude patterns and the
// directory's .gitignore when one exists
func (c *FileCollectorImpl) collectFromDirectory(dir string, recursive bool, excludePatterns []string) ([]string, error) {
	var matcher *ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore")); err == nil {
		matcher = gi
	}

	var files []string

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if c.accepts(path, dir, matcher, excludePatterns) {
				files = append(files, path)
			}
		}
		return files, nil
	}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			name := filepath.Base(path)
			for _, pattern := range excludePatterns {
				if pattern == name {
					return filepath.SkipDir
				}
				if matched, _ := filepath.Match(pattern, name); matched {
					return filepath.SkipDir
				}
			}
			if matcher != nil && path != dir {
				if rel, relErr := filepath.Rel(dir, path); relErr == nil && matcher.MatchesPath(rel) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if c.accepts(path, dir, matcher, excludePatterns) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// accepts applies the extension check, exclude patterns, and gitignore
func (c *FileCollectorImpl) accepts(path, root string, matcher *ignore.GitIgnore, excludePatterns []string) bool {
	if !c.isScriptFile(path) || c.isExcluded(path, excludePatterns) {
		return false
	}
	if matcher != nil {
		if rel, err := filepath.Rel(root, path); err == nil && matcher.MatchesPath(rel) {
			return false
		}
	}
	return true
}

// isScriptFile checks the file extension
func (c *FileCollectorImpl) isScriptFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ahk" || ext == ".ahk2" || ext == ".ah2"
}

// isExcluded checks if a path matches any exclude pattern
func (c *FileCollectorImpl) isExcluded(path string, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
