package torrent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Exclusions lists what Enumerate skips. Paths may be relative to the
// working directory; they are made absolute and case-normalized. Patterns
// are matched anywhere in a node's absolute path.
type Exclusions struct {
	Paths    []string
	Patterns []*regexp.Regexp
}

// IsEmpty reports whether no exclusion is configured.
func (e Exclusions) IsEmpty() bool {
	return len(e.Paths) == 0 && len(e.Patterns) == 0
}

type walker struct {
	root     string
	excluded map[string]struct{}
	patterns []*regexp.Regexp
	visited  map[string]struct{}
	entries  []FileEntry
	logger   *zap.Logger
}

// Enumerate lists every regular file below root in a stable order.
//
// Each directory's children are sorted case-insensitively before the walk
// descends, so the result does not depend on the order the filesystem
// returns entries in. Symlinks are followed, but a node whose resolved path
// was already visited is skipped, which breaks symlink cycles. Nodes that
// are neither files nor directories fail with ErrUnsupportedNodeType.
func Enumerate(root string, ex Exclusions, logger *zap.Logger) ([]FileEntry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	w := &walker{
		root:     absRoot,
		excluded: make(map[string]struct{}, len(ex.Paths)),
		patterns: ex.Patterns,
		visited:  make(map[string]struct{}),
		logger:   logger,
	}
	for _, p := range ex.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve excluded path %s: %w", p, err)
		}
		w.excluded[normCase(abs)] = struct{}{}
	}

	if err := w.walkDir(absRoot); err != nil {
		return nil, err
	}
	return w.entries, nil
}

func (w *walker) walkDir(dir string) error {
	children, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.Name()
	}
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	w.visited[canonical(dir)] = struct{}{}

	for _, name := range names {
		path := filepath.Join(dir, name)
		rel := w.rel(path)

		if _, ok := w.excluded[normCase(path)]; ok {
			w.logger.Debug("skipping explicitly excluded path", zap.String("path", rel))
			continue
		}
		if re := w.matchPattern(path); re != nil {
			w.logger.Debug("skipping path matching exclude pattern",
				zap.String("path", rel), zap.String("pattern", re.String()))
			continue
		}

		resolved := canonical(path)
		if _, ok := w.visited[resolved]; ok {
			w.logger.Warn("skipping symlink, its target has already been processed", zap.String("path", path))
			continue
		}
		w.visited[resolved] = struct{}{}

		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if li, lerr := os.Lstat(path); lerr == nil && li.Mode()&fs.ModeSymlink != 0 {
					return fmt.Errorf("%w: dangling symlink %s", ErrUnsupportedNodeType, path)
				}
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}

		switch {
		case info.Mode().IsRegular():
			w.entries = append(w.entries, FileEntry{
				Path:   splitPath(rel),
				Length: info.Size(),
			})
		case info.IsDir():
			if err := w.walkDir(path); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s (%s)", ErrUnsupportedNodeType, path, info.Mode().Type())
		}
	}
	return nil
}

func (w *walker) matchPattern(path string) *regexp.Regexp {
	for _, re := range w.patterns {
		if re.MatchString(path) {
			return re
		}
	}
	return nil
}

func (w *walker) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return rel
}

// canonical resolves symlinks; unresolvable paths fall back to the cleaned
// absolute path so the caller's stat reports the real problem.
func canonical(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}
	return normCase(resolved)
}

// normCase folds case on case-insensitive platforms only.
func normCase(path string) string {
	path = filepath.Clean(path)
	if runtime.GOOS == "windows" {
		return strings.ToLower(path)
	}
	return path
}

// splitPath turns a relative path into its components, resolving "." and
// "..".
func splitPath(rel string) []string {
	rel = filepath.ToSlash(filepath.Clean(rel))
	var parts []string
	for _, p := range strings.Split(rel, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}
