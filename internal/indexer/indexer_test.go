package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanumlabs/codelens/internal/parser"
	"github.com/solanumlabs/codelens/internal/parser/config"
	"github.com/solanumlabs/codelens/internal/store"
	"github.com/solanumlabs/codelens/pkg/types"
)

// fakeStore is an in-memory double for Store, exercising the same
// contract the orchestrator composes against without a real database.
type fakeStore struct {
	mu         sync.Mutex
	files      map[string]*types.File
	resolveErr error
	crossFiled bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string]*types.File)}
}

func (f *fakeStore) WriteFile(file *types.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *file
	f.files[file.AbsolutePath] = &cp
	return nil
}

func (f *fakeStore) RemoveFile(absolutePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, absolutePath)
	return nil
}

func (f *fakeStore) GetFileChecksum(absolutePath string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[absolutePath]
	if !ok {
		return "", false, nil
	}
	return file.Checksum, true, nil
}

func (f *fakeStore) GetFile(absolutePath string) (*types.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[absolutePath], nil
}

func (f *fakeStore) ResolveCrossFile() error {
	f.crossFiled = true
	return f.resolveErr
}

func (f *fakeStore) CallFlowEdges() ([]store.WeightedEdge, error)     { return nil, nil }
func (f *fakeStore) CooccurrenceEdges() ([]store.WeightedEdge, error) { return nil, nil }
func (f *fakeStore) TypeAffinityEdges() ([]store.WeightedEdge, error) { return nil, nil }
func (f *fakeStore) ReplaceChain(chain, description string, edges []store.WeightedEdge) error {
	return nil
}
func (f *fakeStore) ChainNames() ([]string, error) { return nil, nil }
func (f *fakeStore) TransitionsFrom(chain, state string) ([]store.Transition, error) {
	return nil, nil
}
func (f *fakeStore) SymbolIDsByName(name string) ([]string, error) { return nil, nil }
func (f *fakeStore) SymbolNameByID(id string) (string, string, error) {
	return "", "", nil
}

func newTestIndexer(t *testing.T, root string, st Store) *Indexer {
	t.Helper()
	registry := parser.NewRegistry(config.New())
	cfg := DefaultConfig(root)
	return New(cfg, st, registry, nil)
}

func TestIndexFile_NewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: demo\nport: 8080\n"), 0o644))

	st := newFakeStore()
	idx := newTestIndexer(t, dir, st)

	require.NoError(t, idx.IndexFile(context.Background(), path))

	file, err := st.GetFile(path)
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, types.LangConfig, file.Language)
	assert.Equal(t, types.ParseComplete, file.ParseStatus)
	assert.NotEmpty(t, file.Checksum)
}

func TestIndexFile_UnchangedContentSkipsRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: demo\n"), 0o644))

	st := newFakeStore()
	idx := newTestIndexer(t, dir, st)

	require.NoError(t, idx.IndexFile(context.Background(), path))
	first, err := st.GetFile(path)
	require.NoError(t, err)

	outcome, err := idx.indexOne(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, outcomeSkipped, outcome)

	second, err := st.GetFile(path)
	require.NoError(t, err)
	assert.Equal(t, first.Checksum, second.Checksum)
}

func TestIndexFile_ChangedContentReindexes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: demo\n"), 0o644))

	st := newFakeStore()
	idx := newTestIndexer(t, dir, st)
	require.NoError(t, idx.IndexFile(context.Background(), path))
	before, err := st.GetFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("name: demo\nextra: true\n"), 0o644))
	require.NoError(t, idx.IndexFile(context.Background(), path))

	after, err := st.GetFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, before.Checksum, after.Checksum)
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: demo\n"), 0o644))

	st := newFakeStore()
	idx := newTestIndexer(t, dir, st)
	require.NoError(t, idx.IndexFile(context.Background(), path))

	require.NoError(t, idx.RemoveFile(path))
	file, err := st.GetFile(path)
	require.NoError(t, err)
	assert.Nil(t, file)
}

func TestIndexDirectory_WalksAndRebuildsChains(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("a: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"b":2}`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "ignored.json"), []byte(`{}`), 0o644))

	st := newFakeStore()
	idx := newTestIndexer(t, dir, st)

	result, err := idx.IndexDirectory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesFound)
	assert.Equal(t, 2, result.Indexed)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.True(t, st.crossFiled)
}

func TestIndexDirectory_PerFileErrorDoesNotAbortPass(t *testing.T) {
	dir := t.TempDir()
	goodPath := filepath.Join(dir, "a.yaml")
	require.NoError(t, os.WriteFile(goodPath, []byte("a: 1\n"), 0o644))

	st := newFakeStore()
	idx := newTestIndexer(t, dir, st)

	// A path the walker will never find but that directly exercises
	// indexOne's read-error path without touching the real filesystem walk.
	_, err := idx.indexOne(context.Background(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	result, err := idx.IndexDirectory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)
	assert.Empty(t, result.Errors)
}
