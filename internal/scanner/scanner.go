// Package scanner discovers the source files a move has to consider for
// import rewriting.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// defaultExcludes are directory names never worth descending into.
var defaultExcludes = []string{".git", "node_modules", "dist", "build", "vendor", ".movfx"}

// Scanner handles recursive workspace traversal with filtering.
type Scanner struct {
	root           string
	maxBytes       int64
	followSymlinks bool
	includeGlobs   []string
	excludeGlobs   []string
	gitignore      *ignore.GitIgnore
}

// Config holds scanner configuration options.
type Config struct {
	// Root is the absolute workspace root; all results are relative to it.
	Root           string
	MaxBytes       int64
	FollowSymlinks bool
	IncludeGlobs   []string
	ExcludeGlobs   []string
	NoGitignore    bool
}

// New creates a new scanner with the given configuration.
func New(cfg Config) *Scanner {
	s := &Scanner{
		root:           cfg.Root,
		maxBytes:       cfg.MaxBytes,
		followSymlinks: cfg.FollowSymlinks,
		includeGlobs:   cfg.IncludeGlobs,
		excludeGlobs:   cfg.ExcludeGlobs,
	}

	if !cfg.NoGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(cfg.Root, ".gitignore")); err == nil {
			s.gitignore = gi
		}
	}

	return s
}

// Scan walks the workspace and returns the sorted, slash-separated
// relative paths of every file that passes the filters.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	var files []string

	err := fs.WalkDir(os.DirFS(s.root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == "." {
			return nil
		}

		if d.IsDir() {
			if s.shouldSkipDir(path) {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !s.followSymlinks {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		if !s.shouldProcess(path, d) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (s *Scanner) shouldSkipDir(rel string) bool {
	base := filepath.Base(rel)
	for _, skip := range defaultExcludes {
		if base == skip {
			return true
		}
	}
	if s.gitignore != nil && s.gitignore.MatchesPath(rel) {
		return true
	}
	return s.matchesAny(rel, s.excludeGlobs)
}

func (s *Scanner) shouldProcess(rel string, d fs.DirEntry) bool {
	if s.gitignore != nil && s.gitignore.MatchesPath(rel) {
		return false
	}
	if s.matchesAny(rel, s.excludeGlobs) {
		return false
	}
	if len(s.includeGlobs) > 0 && !s.matchesAny(rel, s.includeGlobs) {
		return false
	}

	if s.maxBytes > 0 {
		info, err := d.Info()
		if err != nil || info.Size() > s.maxBytes {
			return false
		}
	}
	return true
}

// matchesAny performs glob matching with ** support; bare patterns
// without a separator also match against the basename.
func (s *Scanner) matchesAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.PathMatch(p, rel); err == nil && ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, err := doublestar.PathMatch(p, filepath.Base(rel)); err == nil && ok {
				return true
			}
		}
	}
	return false
}
