package resolve

import (
	"path/filepath"
	"strings"

	"github.com/solanumlabs/codelens/internal/apperr"
)

// FileRef is the minimal shape the path resolver needs from the store's
// file table: an absolute and a project-relative path for one indexed
// file.
type FileRef struct {
	Absolute string
	Relative string
}

// ResolvePath resolves a path hint in four steps: exact absolute match,
// then exact relative match, then unambiguous suffix match, then unique
// basename match. Each step short-circuits on a unique hit; a step with
// more than one candidate returns *apperr.ResolverError carrying them.
// No match at any step returns *apperr.NotFound.
func ResolvePath(files []FileRef, hint string) (string, error) {
	hint = filepath.ToSlash(strings.TrimSpace(hint))

	absPred := func(f FileRef) bool { return f.Absolute == hint }
	relPred := func(f FileRef) bool { return f.Relative == hint }
	suffixPred := func(f FileRef) bool {
		return hasPathSuffix(f.Relative, hint) || hasPathSuffix(f.Absolute, hint)
	}
	base := filepath.Base(hint)
	basePred := func(f FileRef) bool { return filepath.Base(f.Relative) == base }

	steps := []struct {
		pred   func(FileRef) bool
		result func(FileRef) string
	}{
		{absPred, func(f FileRef) string { return f.Absolute }},
		{relPred, func(f FileRef) string { return f.Relative }},
		{suffixPred, func(f FileRef) string { return f.Relative }},
		{basePred, func(f FileRef) string { return f.Relative }},
	}

	for _, step := range steps {
		match, state := uniqueBy(files, step.pred)
		switch state {
		case found:
			return step.result(match), nil
		case ambiguous:
			return "", ambiguousErr(files, step.pred, hint)
		}
	}

	return "", &apperr.NotFound{Subject: "file", Query: hint}
}

// hasPathSuffix matches hint as a trailing run of path segments, so
// "pkg/foo.go" matches ".../internal/pkg/foo.go" but "g/foo.go" does not.
func hasPathSuffix(full, hint string) bool {
	if full == hint {
		return true
	}
	return strings.HasSuffix(full, "/"+hint)
}

type matchState int

const (
	none matchState = iota
	found
	ambiguous
)

func uniqueBy(files []FileRef, pred func(FileRef) bool) (FileRef, matchState) {
	var match FileRef
	state := none
	for _, f := range files {
		if !pred(f) {
			continue
		}
		switch state {
		case none:
			match = f
			state = found
		case found:
			state = ambiguous
		}
	}
	return match, state
}

func ambiguousErr(files []FileRef, pred func(FileRef) bool, hint string) error {
	var candidates []string
	for _, f := range files {
		if pred(f) {
			candidates = append(candidates, f.Relative)
		}
	}
	return &apperr.ResolverError{Hint: hint, Candidates: candidates}
}
