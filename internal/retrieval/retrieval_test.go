package retrieval_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solanumlabs/codelens/internal/hashutil"
	"github.com/solanumlabs/codelens/internal/retrieval"
	"github.com/solanumlabs/codelens/internal/store"
	"github.com/solanumlabs/codelens/pkg/types"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "codelens.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func strPtr(s string) *string { return &s }

func writeSampleFile(t *testing.T, s *store.Store, path string) {
	t.Helper()
	fnID := hashutil.SymbolID(path, "greet", string(types.KindFunction), 1)
	helperID := hashutil.SymbolID(path, "helper", string(types.KindFunction), 5)
	f := &types.File{
		AbsolutePath: path,
		RelativePath: "pkg/greet.ts",
		Language:     types.LangTypeScript,
		Checksum:     hashutil.HashBytes([]byte("content-v1")),
		LastModified: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Summary:      "greeting helpers",
		LineCount:    20,
		ParseStatus:  types.ParseComplete,
		Snapshot: types.Snapshot{
			Symbols: []types.Symbol{
				{
					ID:            fnID,
					Name:          "greet",
					QualifiedName: "greet",
					Kind:          types.KindFunction,
					Signature:     "function greet(name: string): string",
					Location:      types.Location{File: path, StartLine: 1, EndLine: 3},
					Function: &types.FunctionPayload{
						Parameters: []types.Parameter{{Name: "name", Type: strPtr("string")}},
						ReturnType: strPtr("string"),
						LocalName:  "greet",
					},
				},
				{
					ID:            helperID,
					Name:          "helper",
					QualifiedName: "helper",
					Kind:          types.KindFunction,
					Signature:     "function helper(): void",
					Location:      types.Location{File: path, StartLine: 5, EndLine: 7},
					Function:      &types.FunctionPayload{LocalName: "helper"},
				},
			},
			Calls: []types.CallEdge{
				{
					ID:         hashutil.EdgeID(path, fnID, "helper"),
					CallerID:   fnID,
					CallerName: "greet",
					CalleeName: "helper",
					CalleeID:   &helperID,
					Count:      1,
				},
			},
			Exports: []types.Export{
				{Name: "greet", Line: 1},
			},
		},
	}
	require.NoError(t, s.WriteFile(f))
}

type noopIndexer struct{}

func (noopIndexer) IndexDirectory(ctx context.Context) (*types.IndexResult, error) {
	return &types.IndexResult{}, nil
}

func newTestService(t *testing.T, s *store.Store, root string) *retrieval.Service {
	t.Helper()
	return retrieval.New(s, nil, noopIndexer{}, root, zap.NewNop())
}

func TestGetFunction_ResolvesByPathHintAndName(t *testing.T) {
	s := openTestStore(t)
	writeSampleFile(t, s, "/repo/pkg/greet.ts")
	svc := newTestService(t, s, "/repo")

	sym, err := svc.GetFunction("greet.ts", "greet")
	require.NoError(t, err)
	assert.Equal(t, "greet", sym.Name)
}

func TestFindReferences_GroupsByFile(t *testing.T) {
	s := openTestStore(t)
	writeSampleFile(t, s, "/repo/pkg/greet.ts")
	svc := newTestService(t, s, "/repo")

	groups, err := svc.FindReferences("helper")
	require.NoError(t, err)
	// helper has no recorded Reference rows in this fixture (only a
	// CallEdge), so the group list is legitimately empty; this test
	// guards the grouping logic doesn't error on a clean miss.
	assert.Empty(t, groups)
}

func TestGetRelatedContext_BundlesCalleesAndSignature(t *testing.T) {
	s := openTestStore(t)
	writeSampleFile(t, s, "/repo/pkg/greet.ts")
	svc := newTestService(t, s, "/repo")

	ctx, err := svc.GetRelatedContext("greet")
	require.NoError(t, err)
	assert.Equal(t, "greet", ctx.Symbol.Name)
	require.Len(t, ctx.Callees, 1)
	assert.Equal(t, "helper", ctx.Callees[0].CalleeName)
}

func TestGetRelatedContext_UnknownNameReturnsNotFound(t *testing.T) {
	s := openTestStore(t)
	svc := newTestService(t, s, "/repo")

	_, err := svc.GetRelatedContext("nope")
	require.Error(t, err)
}

func TestSearchSymbols_RejectsInvalidOptions(t *testing.T) {
	s := openTestStore(t)
	svc := newTestService(t, s, "/repo")

	_, err := svc.SearchSymbols(types.SearchOptions{Limit: -1})
	require.Error(t, err)
}

func TestSearchSymbols_FindsWrittenSymbol(t *testing.T) {
	s := openTestStore(t)
	writeSampleFile(t, s, "/repo/pkg/greet.ts")
	svc := newTestService(t, s, "/repo")

	results, err := svc.SearchSymbols(types.SearchOptions{Query: "greet"})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestGetArchitectureOverview_GroupsByTopLevelModule(t *testing.T) {
	s := openTestStore(t)
	writeSampleFile(t, s, "/repo/pkg/greet.ts")
	svc := newTestService(t, s, "/repo")

	ov, err := svc.GetArchitectureOverview("")
	require.NoError(t, err)
	require.Len(t, ov.Modules, 1)
	assert.Equal(t, "pkg", ov.Modules[0].Name)
	assert.Equal(t, 1, ov.Modules[0].Files)
	require.Len(t, ov.Modules[0].TopExports, 1)
	assert.Equal(t, "greet", ov.Modules[0].TopExports[0].Name)
}

func TestSyncIndex_DelegatesToIndexer(t *testing.T) {
	s := openTestStore(t)
	svc := newTestService(t, s, "/repo")

	result, err := svc.SyncIndex(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestRenderSymbol_CompactAndMarkdownDescribeSameSymbol(t *testing.T) {
	s := openTestStore(t)
	writeSampleFile(t, s, "/repo/pkg/greet.ts")
	svc := newTestService(t, s, "/repo")

	sym, err := svc.GetFunction("greet.ts", "greet")
	require.NoError(t, err)

	compact := retrieval.RenderSymbol(sym, types.FormatCompact)
	markdown := retrieval.RenderSymbol(sym, types.FormatMarkdown)
	assert.Contains(t, compact, sym.QualifiedName)
	assert.Contains(t, markdown, sym.QualifiedName)
	assert.Contains(t, markdown, sym.Signature)
}
