// Package retrieval is the thin composition layer over the store: each
// endpoint validates its options, runs one or a few store lookups, and
// renders the result as either compact tabular output or a markdown
// narrative, both derived from the same structured records.
package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solanumlabs/codelens/internal/apperr"
	"github.com/solanumlabs/codelens/internal/markov"
	"github.com/solanumlabs/codelens/internal/resolve"
	"github.com/solanumlabs/codelens/internal/store"
	"github.com/solanumlabs/codelens/internal/store/fuzzycache"
	"github.com/solanumlabs/codelens/internal/vcsinfo"
	"github.com/solanumlabs/codelens/pkg/types"
)

// Indexer is the subset of *indexer.Indexer sync_index drives.
type Indexer interface {
	IndexDirectory(ctx context.Context) (*types.IndexResult, error)
}

// Service composes a store, a fuzzy-search cache, and an orchestrator
// into the retrieval API. SearchSymbols, GetFunction and SyncIndex each
// assign themselves a UUID trace ID attached to every log line they
// emit; the other methods do not log.
type Service struct {
	store    *store.Store
	cache    *fuzzycache.Cache
	indexer  Indexer
	root     string
	validate *validator.Validate
	log      *zap.Logger
}

// New builds a Service. cache may be nil, in which case search_symbols
// never falls back to the fuzzy path.
func New(st *store.Store, cache *fuzzycache.Cache, ix Indexer, root string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    st,
		cache:    cache,
		indexer:  ix,
		root:     root,
		validate: validator.New(),
		log:      log.Named("retrieval"),
	}
}

func (s *Service) requestLogger(endpoint string) *zap.Logger {
	return s.log.With(zap.String("endpoint", endpoint), zap.String("trace_id", uuid.NewString()))
}

// resolveFile turns a path hint into the absolute path key the store
// indexes files by.
func (s *Service) resolveFile(hint string) (string, error) {
	rows, err := s.store.AllFiles()
	if err != nil {
		return "", err
	}
	files := make([]resolve.FileRef, len(rows))
	for i, r := range rows {
		files[i] = resolve.FileRef{Absolute: r.Absolute, Relative: r.Relative}
	}
	return resolve.ResolvePath(files, hint)
}

// SearchSymbols wraps the store's FTS/fuzzy search with pagination and
// validated options.
func (s *Service) SearchSymbols(opts types.SearchOptions) ([]types.SearchResult, error) {
	log := s.requestLogger("search_symbols")
	if err := s.validate.Struct(opts); err != nil {
		return nil, err
	}
	results, err := s.store.SearchSymbols(opts, s.cache)
	if err != nil {
		log.Error("search failed", zap.Error(err))
		return nil, err
	}
	log.Debug("search complete", zap.Int("results", len(results)))
	return results, nil
}

// GetFunction wraps FindFunction with path resolution.
func (s *Service) GetFunction(fileHint, name string) (*types.Symbol, error) {
	log := s.requestLogger("get_function")
	file, err := s.resolveFile(fileHint)
	if err != nil {
		return nil, err
	}
	sym, err := s.store.FindFunction(file, name)
	if err != nil {
		log.Debug("lookup failed", zap.Error(err))
		return nil, err
	}
	return sym, nil
}

// GetClass wraps GetClassOrInterface with path resolution.
func (s *Service) GetClass(fileHint, name string) (*types.Symbol, error) {
	file, err := s.resolveFile(fileHint)
	if err != nil {
		return nil, err
	}
	return s.store.GetClassOrInterface(file, name)
}

// ReferenceGroup is every reference to one name within a single file.
type ReferenceGroup struct {
	File       string
	References []types.Reference
}

// FindReferences returns references to name grouped by referencing
// file.
func (s *Service) FindReferences(name string) ([]ReferenceGroup, error) {
	refs, err := s.store.ReferencesByName(name)
	if err != nil {
		return nil, err
	}
	byFile := map[string][]types.Reference{}
	var order []string
	for _, r := range refs {
		if _, seen := byFile[r.File]; !seen {
			order = append(order, r.File)
		}
		byFile[r.File] = append(byFile[r.File], r)
	}
	sort.Strings(order)
	out := make([]ReferenceGroup, len(order))
	for i, f := range order {
		out[i] = ReferenceGroup{File: f, References: byFile[f]}
	}
	return out, nil
}

// maxTraceDepth bounds trace_calls regardless of the caller's request.
const maxTraceDepth = 10

// TraceCalls runs a BFS over the call graph from functionName, depth
// capped at maxTraceDepth.
func (s *Service) TraceCalls(functionName string, depth int) ([]store.CallPath, error) {
	if depth <= 0 || depth > maxTraceDepth {
		depth = maxTraceDepth
	}
	return s.store.TraceCalls(functionName, depth)
}

// RelatedContext bundles a function's own record, its immediate
// callees, and the types it references, the materials
// get_related_context assembles for one symbol name.
type RelatedContext struct {
	Symbol    *types.Symbol
	Callees   []types.CallEdge
	TypeEdges []types.TypeRelationship
}

// GetRelatedContext bundles symbolName's definition with its immediate
// callees and the types it references.
func (s *Service) GetRelatedContext(symbolName string) (*RelatedContext, error) {
	ids, err := s.store.SymbolIDsByName(symbolName)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &apperr.NotFound{Subject: "symbol", Query: symbolName}
	}
	id := ids[0]

	sym, err := s.symbolByIDPublic(id)
	if err != nil {
		return nil, err
	}
	callees, err := s.store.CallEdgesFrom(id)
	if err != nil {
		return nil, err
	}
	typeEdges, err := s.store.TypeRelationshipsFrom(id)
	if err != nil {
		return nil, err
	}
	return &RelatedContext{Symbol: sym, Callees: callees, TypeEdges: typeEdges}, nil
}

// symbolByIDPublic rehydrates a symbol by ID via the lookup the store
// already exposes for function resolution, since Store has no direct
// GetSymbolByID of its own; FindFunction's precedence isn't needed
// here, only the row-by-ID rehydration it relies on internally, so this
// goes through SymbolNameByID + a name-scoped search instead of
// reaching into the store's unexported helpers.
func (s *Service) symbolByIDPublic(id string) (*types.Symbol, error) {
	name, file, err := s.store.SymbolNameByID(id)
	if err != nil {
		return nil, err
	}
	return s.store.FindFunction(file, name)
}

// SuggestRelated wraps the Markov traversal with validated options.
func (s *Service) SuggestRelated(symbolName string, opts types.SuggestOptions) (types.SuggestResult, error) {
	if err := s.validate.Struct(opts); err != nil {
		return types.SuggestResult{}, err
	}
	return markov.SuggestRelated(s.store, symbolName, opts)
}

// SyncIndex runs a full index_directory pass through the orchestrator.
func (s *Service) SyncIndex(ctx context.Context) (*types.IndexResult, error) {
	log := s.requestLogger("sync_index")
	result, err := s.indexer.IndexDirectory(ctx)
	if err != nil {
		log.Error("sync failed", zap.Error(err))
		return result, err
	}
	log.Info("sync complete", zap.Int("indexed", result.Indexed))
	return result, nil
}

// ArchitectureOverview groups indexed files by top-level module and
// ranks exports by a reference-count score, per get_architecture_overview.
type ArchitectureOverview struct {
	Repo        vcsinfo.Info
	Modules     []ModuleSummary
	EntryPoints []string
}

// ModuleSummary is one top-level-directory grouping within an
// architecture overview. Dependencies are cross-module edges only: an
// import resolving to a file within the same module is internal
// structure, not an architectural dependency. ValueDependencies and
// TypeDependencies are kept apart per import's type-only flag.
type ModuleSummary struct {
	Name              string
	Files             int
	TopExports        []ExportScore
	ValueDependencies []string
	TypeDependencies  []string
}

// ExportScore pairs an export name with the reference count backing its
// rank within get_architecture_overview.
type ExportScore struct {
	Name  string
	Score int
}

// conventionalEntryPoints is the set of base filenames entry points are
// detected from. Package manifests are not read.
var conventionalEntryPoints = []string{"index.ts", "index.js", "main.py", "cli.py", "cli.ts"}

// GetArchitectureOverview groups files by top-level module, ranks each
// module's exports by reference count, and reports as entry points the
// files whose base name is in conventionalEntryPoints; package manifest
// fields (bin, main, scripts) are not consulted.
func (s *Service) GetArchitectureOverview(focus string) (*ArchitectureOverview, error) {
	rows, err := s.store.AllFiles()
	if err != nil {
		return nil, err
	}

	moduleByAbs := make(map[string]string, len(rows))
	for _, f := range rows {
		moduleByAbs[f.Absolute] = topLevelModule(f.Relative)
	}

	modules := map[string]*ModuleSummary{}
	var order []string
	var entryPoints []string

	for _, f := range rows {
		if focus != "" && !strings.HasPrefix(f.Relative, focus) {
			continue
		}
		mod := topLevelModule(f.Relative)
		if _, ok := modules[mod]; !ok {
			modules[mod] = &ModuleSummary{Name: mod}
			order = append(order, mod)
		}
		modules[mod].Files++

		base := baseName(f.Relative)
		for _, candidate := range conventionalEntryPoints {
			if base == candidate {
				entryPoints = append(entryPoints, f.Relative)
			}
		}

		exports, err := s.store.ExportsOf(f.Absolute)
		if err != nil {
			return nil, err
		}
		for _, exp := range exports {
			refs, err := s.store.ReferencesByName(exp.Name)
			if err != nil {
				return nil, err
			}
			modules[mod].TopExports = append(modules[mod].TopExports, ExportScore{Name: exp.Name, Score: len(refs)})
		}

		deps, err := s.store.DependencyEdges(f.Absolute)
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			if moduleByAbs[dep.ResolvedPath] == mod {
				continue // same-module import, not a module-level dependency edge
			}
			if dep.TypeOnly {
				modules[mod].TypeDependencies = append(modules[mod].TypeDependencies, dep.ResolvedPath)
			} else {
				modules[mod].ValueDependencies = append(modules[mod].ValueDependencies, dep.ResolvedPath)
			}
		}
	}

	sort.Strings(order)
	out := make([]ModuleSummary, 0, len(order))
	for _, name := range order {
		m := modules[name]
		sort.Slice(m.TopExports, func(i, j int) bool { return m.TopExports[i].Score > m.TopExports[j].Score })
		m.ValueDependencies = dedupSorted(m.ValueDependencies)
		m.TypeDependencies = dedupSorted(m.TypeDependencies)
		out = append(out, *m)
	}

	return &ArchitectureOverview{
		Repo:        vcsinfo.Load(s.root),
		Modules:     out,
		EntryPoints: entryPoints,
	}, nil
}

// dedupSorted sorts and removes duplicate entries, since the same
// cross-module dependency can be imported from more than one file.
func dedupSorted(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	sort.Strings(paths)
	out := paths[:1]
	for _, p := range paths[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

func topLevelModule(relPath string) string {
	if i := strings.IndexByte(relPath, '/'); i >= 0 {
		return relPath[:i]
	}
	return "."
}

func baseName(relPath string) string {
	if i := strings.LastIndexByte(relPath, '/'); i >= 0 {
		return relPath[i+1:]
	}
	return relPath
}
