// Package scan discovers the source files of a workspace. Inside a git
// repository it uses git ls-files so .gitignore is respected; elsewhere it
// falls back to a filesystem walk.
package scan

import (
	"bytes"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jward/lattice/internal/lang"
)

// skipDirs are directories excluded from the filesystem-walk fallback.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// Scanner lists supported source files under a root directory.
type Scanner struct {
	includes []string // doublestar patterns relative to root; empty means all
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithIncludes restricts results to files matching at least one of the
// given doublestar patterns, evaluated against the slash-separated path
// relative to the scanned root.
func WithIncludes(patterns ...string) Option {
	return func(s *Scanner) {
		s.includes = append(s.includes, patterns...)
	}
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListFiles returns the absolute paths of all supported source files under
// root. Tries git ls-files first, falling back to a walk when root is not a
// git repository or git is unavailable.
func (s *Scanner) ListFiles(root string) ([]string, error) {
	paths, err := s.gitListFiles(root)
	if err != nil {
		paths, err = s.walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to supported languages.
func (s *Scanner) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !s.keep(line) {
			continue
		}
		paths = append(paths, filepath.Join(root, line))
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a
// fallback when git is not available. Skips hidden directories,
// node_modules, vendor, and __pycache__.
func (s *Scanner) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if s.keep(filepath.ToSlash(rel)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// keep applies the language filter and include patterns to a slash-relative
// path.
func (s *Scanner) keep(rel string) bool {
	if _, ok := lang.LanguageForFile(rel); !ok {
		return false
	}
	if len(s.includes) == 0 {
		return true
	}
	for _, pattern := range s.includes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
