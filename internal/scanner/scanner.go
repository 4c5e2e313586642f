// Package scanner walks a directory tree and reports the source files the
// analyzer understands, skipping build artifacts and VCS metadata.
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// FileInfo describes a discovered source file.
type FileInfo struct {
	Path     string // relative to the scan root
	FullPath string // absolute path
	Language string // detected language
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // skip files and directories starting with .
	DefaultExcludes []string // directory names to exclude
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden: true,
		DefaultExcludes: []string{
			"node_modules",
			".git",
			"__pycache__",
			".venv",
			"venv",
			"dist",
			"build",
			"vendor",
			"testdata",
			"target",
		},
	}
}

// Scanner walks directory trees for supported source files.
type Scanner struct {
	opts     Options
	excluded map[string]struct{}
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	s := &Scanner{opts: opts, excluded: make(map[string]struct{})}
	for _, name := range opts.DefaultExcludes {
		s.excluded[name] = struct{}{}
	}
	return s
}

// Scan recursively walks root and returns every supported source file.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if _, ok := s.excluded[name]; ok {
				return filepath.SkipDir
			}
			if s.opts.SkipHidden && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if s.opts.SkipHidden && strings.HasPrefix(name, ".") {
			return nil
		}

		lang, ok := Language(path)
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = path
		}
		files = append(files, FileInfo{Path: rel, FullPath: path, Language: lang})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}
