// Package walk enumerates source files under a root by include/exclude glob
// lists. Grounded on the doublestar matching pattern used by
// standardbeagle-lci's FileScanner (shouldIncludeFast/shouldExcludeFast).
package walk

import (
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/solanumlabs/codelens/pkg/types"
)

// Walker enumerates regular files under a root matching Config's include
// list and none of its exclude list.
type Walker struct {
	root   string
	config types.WalkConfig
}

// New builds a Walker over root, applying cfg's include/exclude globs.
func New(root string, cfg types.WalkConfig) *Walker {
	return &Walker{root: root, config: cfg}
}

// Walk invokes fn for every file under the root that should be indexed, in
// filesystem traversal order. fn may return an error to abort the walk.
func (w *Walker) Walk(fn func(absPath, relPath string) error) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !w.Matches(rel) {
			return nil
		}
		return fn(path, rel)
	})
}

// Matches reports whether relPath should be indexed under this Walker's
// include/exclude configuration, the same test Walk applies per file.
// Exported so other packages watching individual paths (the watcher's
// debounced queue) can apply an identical filter without re-walking.
func (w *Walker) Matches(relPath string) bool {
	return !w.shouldExclude(relPath) && w.shouldInclude(relPath)
}

// ExcludesDir reports whether relPath names a directory that should be
// pruned from traversal entirely: only the exclude list applies, since
// a directory never itself satisfies an include pattern the way a file
// does but may still contain files that do.
func (w *Walker) ExcludesDir(relPath string) bool {
	return w.shouldExclude(relPath)
}

func (w *Walker) shouldExclude(relPath string) bool {
	for _, pattern := range w.config.Exclude {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldInclude(relPath string) bool {
	if len(w.config.Include) == 0 {
		return true
	}
	for _, pattern := range w.config.Include {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}
