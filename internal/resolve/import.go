// Package resolve implements the import resolver, the path resolver, and
// the cross-file resolver. None of the three touch the store directly:
// they take plain data or small lookup interfaces, so they stay testable
// without a database and so the store package can satisfy the
// interfaces however it likes.
package resolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/solanumlabs/codelens/pkg/types"
)

// ImportConfig configures one project's import resolution: the root
// directory resolution may never escape, the per-language extension
// priority used when a specifier omits one, and the external/built-in
// classification tables.
type ImportConfig struct {
	Root Root

	// ExtensionPriority maps a language to the ordered list of extensions
	// tried when a relative specifier has none of its own, and when
	// resolving a directory specifier's index.* file.
	ExtensionPriority map[types.Language][]string

	// ReservedPrefixes classifies a specifier as external without any
	// filesystem lookup, e.g. "node:" or "@types/".
	ReservedPrefixes []string

	// BuiltinModules classifies a bare specifier as external per language,
	// e.g. Node's "fs"/"path" or Python's "os"/"sys".
	BuiltinModules map[types.Language]map[string]bool
}

// Root wraps the project root as an absolute, cleaned path so every
// boundary check in this package compares against the same normal form.
type Root string

// NewRoot cleans and absolutizes dir once, at config time.
func NewRoot(dir string) Root {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return Root(filepath.Clean(abs))
}

// DefaultImportConfig returns sane extension-priority and built-in tables
// covering the languages codelens ships parsers for.
func DefaultImportConfig(root string) ImportConfig {
	return ImportConfig{
		Root: NewRoot(root),
		ExtensionPriority: map[types.Language][]string{
			types.LangTypeScript: {".ts", ".tsx", ".d.ts", ".js", ".jsx", ".json"},
			types.LangJavaScript: {".js", ".jsx", ".ts", ".tsx", ".json"},
			types.LangPython:     {".py", ".pyi"},
		},
		ReservedPrefixes: []string{"node:", "@types/"},
		BuiltinModules: map[types.Language]map[string]bool{
			types.LangTypeScript: jsBuiltins,
			types.LangJavaScript: jsBuiltins,
			types.LangPython:     pyBuiltins,
		},
	}
}

var jsBuiltins = setOf(
	"fs", "path", "os", "http", "https", "net", "url", "util", "events",
	"stream", "crypto", "child_process", "assert", "buffer", "querystring",
	"readline", "zlib", "process", "module",
)

var pyBuiltins = setOf(
	"os", "sys", "re", "json", "io", "typing", "collections", "itertools",
	"functools", "dataclasses", "abc", "enum", "pathlib", "subprocess",
	"asyncio", "logging", "datetime", "math", "random", "unittest",
)

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// ResolveImport mutates imp in place, setting ResolvedPath, External, and
// ReExport. It never returns an error: an import that cannot be placed
// on disk is left unresolved (ResolvedPath stays nil), not reported as
// a failure.
func ResolveImport(cfg ImportConfig, currentFile string, lang types.Language, imp *types.Import) {
	spec := imp.ModuleSpecifier
	if isReserved(spec, cfg.ReservedPrefixes) || isBuiltin(spec, lang, cfg.BuiltinModules) {
		imp.External = true
		return
	}
	if !isRelative(spec) {
		// Bare package specifiers (npm packages, Python site-packages) have
		// no resolvable location without a package manager's install
		// layout, which is out of scope here; they are external.
		imp.External = true
		return
	}

	dir := filepath.Dir(currentFile)
	joined := filepath.Join(dir, filepath.FromSlash(spec))

	resolved, ok := resolveOnDisk(cfg, lang, joined)
	if !ok {
		return
	}
	imp.ResolvedPath = &resolved
}

// resolveOnDisk tries, in order: the path as given; the path with each
// language extension appended; and — if it names a directory — index.*
// for each extension. The result is root-relative with forward slashes.
func resolveOnDisk(cfg ImportConfig, lang types.Language, candidate string) (string, bool) {
	candidate = filepath.Clean(candidate)
	if !withinRoot(cfg.Root, candidate) {
		return "", false
	}

	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return toRootRelative(cfg.Root, candidate), true
	}

	exts := cfg.ExtensionPriority[lang]

	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		for _, ext := range exts {
			idx := filepath.Join(candidate, "index"+ext)
			if withinRoot(cfg.Root, idx) {
				if fi, err := os.Stat(idx); err == nil && !fi.IsDir() {
					return toRootRelative(cfg.Root, idx), true
				}
			}
		}
		return "", false
	}

	for _, ext := range exts {
		withExt := candidate + ext
		if !withinRoot(cfg.Root, withExt) {
			continue
		}
		if fi, err := os.Stat(withExt); err == nil && !fi.IsDir() {
			return toRootRelative(cfg.Root, withExt), true
		}
	}
	return "", false
}

func isRelative(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".."
}

func isReserved(spec string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(spec, p) {
			return true
		}
	}
	return false
}

func isBuiltin(spec string, lang types.Language, tables map[types.Language]map[string]bool) bool {
	table, ok := tables[lang]
	if !ok {
		return false
	}
	root := spec
	if i := strings.IndexByte(spec, '/'); i >= 0 {
		root = spec[:i]
	}
	if i := strings.IndexByte(spec, '.'); i >= 0 && lang == types.LangPython {
		root = spec[:i]
	}
	return table[root]
}

func withinRoot(root Root, path string) bool {
	rel, err := filepath.Rel(string(root), path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

func toRootRelative(root Root, path string) string {
	rel, err := filepath.Rel(string(root), path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
