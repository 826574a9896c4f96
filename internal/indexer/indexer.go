// Package indexer implements the orchestrator: index_directory,
// index_file, and remove_file. It owns the only sequence that reads a
// file, parses it, resolves its imports, and writes it to the store,
// then (for a full pass) runs the cross-file resolver and rebuilds the
// Markov chains.
package indexer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solanumlabs/codelens/internal/hashutil"
	"github.com/solanumlabs/codelens/internal/markov"
	"github.com/solanumlabs/codelens/internal/parser"
	"github.com/solanumlabs/codelens/internal/resolve"
	"github.com/solanumlabs/codelens/internal/walk"
	"github.com/solanumlabs/codelens/pkg/types"
)

// Store is the subset of *store.Store the orchestrator needs. It embeds
// markov.Store so BuildAll can run at the end of a full pass without the
// orchestrator importing internal/store directly, the same
// consumer-defined-interface seam internal/resolve and internal/markov
// use against the store package.
type Store interface {
	WriteFile(file *types.File) error
	RemoveFile(absolutePath string) error
	GetFileChecksum(absolutePath string) (checksum string, ok bool, err error)
	GetFile(absolutePath string) (*types.File, error)
	ResolveCrossFile() error

	markov.Store
}

// Config configures one Indexer: where it reads from, what it includes,
// and how hard it fans out parsing.
type Config struct {
	Root        string
	Walk        types.WalkConfig
	SizeCeiling int
	Workers     int

	// Progress, if set, is called after each file finishes (in whatever
	// order workers complete them) with the running total and the
	// overall count, for a CLI progress bar to track.
	Progress func(done, total int)
}

// DefaultConfig returns sane walk defaults, the default size ceiling, and
// a fixed worker count of 4.
func DefaultConfig(root string) Config {
	return Config{
		Root:        root,
		Walk:        types.DefaultWalkConfig(),
		SizeCeiling: parser.DefaultSizeCeiling,
		Workers:     4,
	}
}

// Indexer ties the walker, parser registry, import resolver, and store
// together into the three operations spec.md's orchestrator names.
type Indexer struct {
	cfg       Config
	store     Store
	registry  *parser.Registry
	importCfg resolve.ImportConfig
	log       *zap.Logger
}

// New builds an Indexer. registry should already have every language
// parser registered (typescript.New(), python.New(), config.New()).
func New(cfg Config, st Store, registry *parser.Registry, log *zap.Logger) *Indexer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Indexer{
		cfg:       cfg,
		store:     st,
		registry:  registry,
		importCfg: resolve.DefaultImportConfig(cfg.Root),
		log:       log.Named("indexer"),
	}
}

// IndexDirectory enumerates files under the configured root, indexing
// each one that changed since its last recorded checksum. Parsing fans
// out across Workers goroutines; the store's single connection already
// serializes the actual write underneath, so concurrent IndexFile calls
// never race on the same row. After the pass it runs the cross-file
// resolver and rebuilds every Markov chain. Per-file errors are
// collected and returned; they never abort the pass.
func (idx *Indexer) IndexDirectory(ctx context.Context) (*types.IndexResult, error) {
	result := &types.IndexResult{StartedAt: time.Now()}

	var paths []string
	w := walk.New(idx.cfg.Root, idx.cfg.Walk)
	if err := w.Walk(func(absPath, _ string) error {
		paths = append(paths, absPath)
		return nil
	}); err != nil {
		return result, err
	}
	result.FilesFound = len(paths)

	workers := idx.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	done := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, p := range paths {
		path := p
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outcome, err := idx.indexOne(gctx, path)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Errors = append(result.Errors, types.IndexFileError{Path: path, Message: err.Error()})
			case outcome == outcomeSkipped:
				result.Skipped++
			default:
				result.Indexed++
			}
			done++
			if idx.cfg.Progress != nil {
				idx.cfg.Progress(done, len(paths))
			}
			return nil
		})
	}
	// errgroup's own error is always nil here: indexOne's errors are
	// captured into result.Errors rather than returned, so a single bad
	// file never cancels the group's context for the rest.
	_ = g.Wait()

	if err := idx.store.ResolveCrossFile(); err != nil {
		return result, fmt.Errorf("resolve cross-file: %w", err)
	}
	if err := markov.BuildAll(idx.store); err != nil {
		return result, fmt.Errorf("build markov chains: %w", err)
	}

	result.FinishedAt = time.Now()
	idx.log.Info("index_directory complete",
		zap.Int("found", result.FilesFound),
		zap.Int("indexed", result.Indexed),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

type outcome int

const (
	outcomeIndexed outcome = iota
	outcomeSkipped
)

// IndexFile is the unit operation: read, checksum, short-circuit,
// parse, resolve imports, write. It is also what the watcher invokes
// for a single changed path.
func (idx *Indexer) IndexFile(ctx context.Context, absPath string) error {
	_, err := idx.indexOne(ctx, absPath)
	return err
}

func (idx *Indexer) indexOne(ctx context.Context, absPath string) (outcome, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return outcomeSkipped, err
	}
	checksum := hashutil.HashBytes(content)

	prevChecksum, existed, err := idx.store.GetFileChecksum(absPath)
	if err != nil {
		return outcomeSkipped, err
	}
	if existed && prevChecksum == checksum {
		return outcomeSkipped, nil
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return outcomeSkipped, err
	}
	relPath, err := filepath.Rel(idx.cfg.Root, absPath)
	if err != nil {
		relPath = absPath
	}
	relPath = filepath.ToSlash(relPath)

	p := idx.registry.For(absPath)
	if p == nil {
		return outcomeSkipped, nil
	}

	parseResult, err := idx.registry.Parse(absPath, content, idx.cfg.SizeCeiling)
	if err != nil {
		return outcomeSkipped, err
	}

	lang := p.Language()
	if lang == types.LangTypeScript {
		switch filepath.Ext(absPath) {
		case ".js", ".jsx":
			lang = types.LangJavaScript
		}
	}
	for i := range parseResult.Imports {
		resolve.ResolveImport(idx.importCfg, absPath, lang, &parseResult.Imports[i])
	}

	status := types.ParseComplete
	if len(parseResult.Warnings) > 0 {
		status = types.ParsePartial
	}
	byteSize := info.Size()

	file := &types.File{
		AbsolutePath: absPath,
		RelativePath: relPath,
		Language:     lang,
		Checksum:     checksum,
		LastModified: info.ModTime(),
		Summary:      summarize(parseResult),
		LineCount:    bytes.Count(content, []byte("\n")) + 1,
		ParseStatus:  status,
		Warnings:     parseResult.Warnings,
		ByteSize:     &byteSize,
		Snapshot: types.Snapshot{
			Symbols:           parseResult.Symbols,
			Imports:           parseResult.Imports,
			Exports:           parseResult.Exports,
			References:        parseResult.References,
			Calls:             parseResult.Calls,
			TypeRelationships: parseResult.TypeRelationships,
			ConfigEntries:     parseResult.ConfigEntries,
		},
	}

	if existed {
		idx.logChange(ctx, absPath, file)
	}

	if err := idx.store.WriteFile(file); err != nil {
		return outcomeSkipped, err
	}
	return outcomeIndexed, nil
}

// RemoveFile deletes a file's row and every cascaded row, the unit
// operation the watcher invokes for an unlink event.
func (idx *Indexer) RemoveFile(absPath string) error {
	return idx.store.RemoveFile(absPath)
}

func summarize(r *types.ParseResult) string {
	return fmt.Sprintf("%d symbols, %d imports, %d exports, %d references",
		len(r.Symbols), len(r.Imports), len(r.Exports), len(r.References))
}

// logChange diffs the previous snapshot against the new one and emits a
// debug log line describing what changed, instead of just that
// something changed. Best-effort: any failure to load or diff the prior
// record is swallowed, since this is a logging enrichment, not part of
// the write protocol.
func (idx *Indexer) logChange(_ context.Context, absPath string, newFile *types.File) {
	ce := idx.log.Check(zap.DebugLevel, "re-indexing changed file")
	if ce == nil {
		return
	}
	prev, err := idx.store.GetFile(absPath)
	if err != nil || prev == nil {
		ce.Write(zap.String("file", absPath))
		return
	}
	stat, unified, err := snapshotDiff(absPath, &prev.Snapshot, &newFile.Snapshot)
	if err != nil {
		ce.Write(zap.String("file", absPath))
		return
	}
	ce.Write(
		zap.String("file", absPath),
		zap.Int("added", stat.Added),
		zap.Int("deleted", stat.Deleted),
		zap.String("diff", unified),
	)
}
