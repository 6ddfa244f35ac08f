// Package discovery finds the configuration files a run should process.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mcncl/credscrub/internal/errors"
)

// DefaultExcludeDirs are directory names that never contain files worth scrubbing
var DefaultExcludeDirs = []string{".git", "node_modules"}

// Finder walks a directory tree looking for files whose base name matches a pattern
type Finder struct {
	pattern     string
	excludeDirs map[string]struct{}
}

// NewFinder creates a Finder. pattern uses filepath.Match syntax and is
// matched against base names only, e.g. "appsettings*.json".
func NewFinder(pattern string, excludeDirs []string) (*Finder, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}
	excluded := make(map[string]struct{}, len(excludeDirs))
	for _, dir := range excludeDirs {
		excluded[dir] = struct{}{}
	}
	return &Finder{pattern: pattern, excludeDirs: excluded}, nil
}

// ValidatePattern returns a configuration error if pattern is empty or malformed
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return errors.NewConfigurationError("file name pattern is empty", errors.ErrInvalidPattern)
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return errors.NewConfigurationError(fmt.Sprintf("file name pattern '%s' is malformed", pattern), errors.ErrInvalidPattern)
	}
	return nil
}

// Find returns every matching regular file below root in lexical order
func (f *Finder) Find(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewDiscoveryError(fmt.Sprintf("'%s' does not exist", root), errors.ErrDirectoryNotFound)
		}
		return nil, errors.NewDiscoveryError(fmt.Sprintf("cannot access '%s'", root), err)
	}
	if !info.IsDir() {
		return nil, errors.NewDiscoveryError(fmt.Sprintf("'%s' is not a directory", root), errors.ErrDirectoryNotFound)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// An unreadable subdirectory should not hide the rest of the tree
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return walkErr
		}
		if d.IsDir() {
			if _, skip := f.excludeDirs[d.Name()]; skip && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		// Pattern was validated in NewFinder, so Match cannot fail here
		if ok, _ := filepath.Match(f.pattern, d.Name()); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewDiscoveryError(fmt.Sprintf("failed to walk '%s'", root), err)
	}

	sort.Strings(paths)
	return paths, nil
}
