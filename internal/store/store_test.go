package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solanumlabs/codelens/internal/hashutil"
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

func sampleFile(path string) *types.File {
	fnID := hashutil.SymbolID(path, "greet", string(types.KindFunction), 1)
	classID := hashutil.SymbolID(path, "Greeter", string(types.KindClass), 10)
	return &types.File{
		AbsolutePath: path,
		RelativePath: "greet.ts",
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
					ID:            classID,
					Name:          "Greeter",
					QualifiedName: "Greeter",
					Kind:          types.KindClass,
					Signature:     "class Greeter",
					Location:      types.Location{File: path, StartLine: 10, EndLine: 18},
					Class: &types.ClassPayload{
						Methods: []string{"Greeter.hello"},
					},
				},
			},
			Calls: []types.CallEdge{
				{
					ID:         hashutil.EdgeID(path, fnID, "helper"),
					CallerID:   fnID,
					CallerName: "greet",
					CalleeName: "helper",
					Count:      1,
				},
			},
			Imports: []types.Import{
				{ModuleSpecifier: "./helper", Line: 1},
			},
			Exports: []types.Export{
				{Name: "greet", Line: 1},
			},
		},
	}
}

func TestWriteFileAndGetFile(t *testing.T) {
	s := openTestStore(t)
	f := sampleFile("/repo/greet.ts")

	require.NoError(t, s.WriteFile(f))

	got, err := s.GetFile(f.AbsolutePath)
	require.NoError(t, err)
	assert.Equal(t, f.Checksum, got.Checksum)
	assert.Equal(t, f.Summary, got.Summary)
	require.Len(t, got.Snapshot.Symbols, 2)

	checksum, ok, err := s.GetFileChecksum(f.AbsolutePath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.Checksum, checksum)

	_, ok, err = s.GetFileChecksum("/repo/missing.ts")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteFileReplacesPriorRow(t *testing.T) {
	s := openTestStore(t)
	f := sampleFile("/repo/greet.ts")
	require.NoError(t, s.WriteFile(f))

	f2 := sampleFile("/repo/greet.ts")
	f2.Checksum = hashutil.HashBytes([]byte("content-v2"))
	f2.Snapshot.Symbols = f2.Snapshot.Symbols[:1] // drop the class
	require.NoError(t, s.WriteFile(f2))

	got, err := s.GetFile(f.AbsolutePath)
	require.NoError(t, err)
	assert.Equal(t, f2.Checksum, got.Checksum)
	assert.Len(t, got.Snapshot.Symbols, 1)
}

func TestRemoveFileCascades(t *testing.T) {
	s := openTestStore(t)
	f := sampleFile("/repo/greet.ts")
	require.NoError(t, s.WriteFile(f))

	require.NoError(t, s.RemoveFile(f.AbsolutePath))

	_, err := s.GetFile(f.AbsolutePath)
	require.Error(t, err)

	edges, err := s.CallEdgesByCalleeName("helper")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestFindFunctionPrecedence(t *testing.T) {
	s := openTestStore(t)
	f := sampleFile("/repo/greet.ts")
	require.NoError(t, s.WriteFile(f))

	sym, err := s.FindFunction(f.AbsolutePath, "greet")
	require.NoError(t, err)
	assert.Equal(t, "greet", sym.Name)
}

func TestFindFunctionAmbiguous(t *testing.T) {
	s := openTestStore(t)
	path := "/repo/dup.ts"
	f := &types.File{
		AbsolutePath: path,
		RelativePath: "dup.ts",
		Language:     types.LangTypeScript,
		Checksum:     "c1",
		LastModified: time.Now().UTC(),
		Snapshot: types.Snapshot{
			Symbols: []types.Symbol{
				{
					ID: hashutil.SymbolID(path, "A.run", string(types.KindMethod), 1), Name: "run",
					QualifiedName: "A.run", Kind: types.KindMethod,
					Location: types.Location{File: path, StartLine: 1, EndLine: 2},
					Function: &types.FunctionPayload{LocalName: "run"},
				},
				{
					ID: hashutil.SymbolID(path, "B.run", string(types.KindMethod), 10), Name: "run",
					QualifiedName: "B.run", Kind: types.KindMethod,
					Location: types.Location{File: path, StartLine: 10, EndLine: 11},
					Function: &types.FunctionPayload{LocalName: "run"},
				},
			},
		},
	}
	require.NoError(t, s.WriteFile(f))

	_, err := s.FindFunction(path, "run")
	require.Error(t, err)
}

func TestGetClassOrInterfacePrefersClass(t *testing.T) {
	s := openTestStore(t)
	path := "/repo/shapes.ts"
	f := &types.File{
		AbsolutePath: path, RelativePath: "shapes.ts", Language: types.LangTypeScript,
		Checksum: "c1", LastModified: time.Now().UTC(),
		Snapshot: types.Snapshot{
			Symbols: []types.Symbol{
				{
					ID: hashutil.SymbolID(path, "Shape", string(types.KindInterface), 1), Name: "Shape",
					QualifiedName: "Shape", Kind: types.KindInterface,
					Location: types.Location{File: path, StartLine: 1, EndLine: 2},
					Interface: &types.InterfacePayload{},
				},
				{
					ID: hashutil.SymbolID(path, "Shape", string(types.KindClass), 5), Name: "Shape",
					QualifiedName: "Shape", Kind: types.KindClass,
					Location: types.Location{File: path, StartLine: 5, EndLine: 9},
					Class: &types.ClassPayload{},
				},
			},
		},
	}
	require.NoError(t, s.WriteFile(f))

	sym, err := s.GetClassOrInterface(path, "Shape")
	require.NoError(t, err)
	assert.Equal(t, types.KindClass, sym.Kind)
}

func TestSearchSymbolsFTS(t *testing.T) {
	s := openTestStore(t)
	f := sampleFile("/repo/greet.ts")
	require.NoError(t, s.WriteFile(f))

	results, err := s.SearchSymbols(types.SearchOptions{Query: "greet"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, types.MatchFTS, results[0].Source)
}

func TestReferencesAndCallGraph(t *testing.T) {
	s := openTestStore(t)
	f := sampleFile("/repo/greet.ts")
	require.NoError(t, s.WriteFile(f))

	fnID := hashutil.SymbolID(f.AbsolutePath, "greet", string(types.KindFunction), 1)
	edges, err := s.CallEdgesFrom(fnID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "helper", edges[0].CalleeName)

	byName, err := s.CallEdgesByCalleeName("helper")
	require.NoError(t, err)
	assert.Len(t, byName, 1)
}

func TestTraceCallsBFS(t *testing.T) {
	s := openTestStore(t)
	path := "/repo/chain.ts"
	aID := hashutil.SymbolID(path, "a", string(types.KindFunction), 1)
	bID := hashutil.SymbolID(path, "b", string(types.KindFunction), 5)
	f := &types.File{
		AbsolutePath: path, RelativePath: "chain.ts", Language: types.LangTypeScript,
		Checksum: "c1", LastModified: time.Now().UTC(),
		Snapshot: types.Snapshot{
			Symbols: []types.Symbol{
				{ID: aID, Name: "a", QualifiedName: "a", Kind: types.KindFunction, Location: types.Location{File: path, StartLine: 1, EndLine: 2}, Function: &types.FunctionPayload{LocalName: "a"}},
				{ID: bID, Name: "b", QualifiedName: "b", Kind: types.KindFunction, Location: types.Location{File: path, StartLine: 5, EndLine: 6}, Function: &types.FunctionPayload{LocalName: "b"}},
			},
			Calls: []types.CallEdge{
				{ID: hashutil.EdgeID(path, aID, "b"), CallerID: aID, CallerName: "a", CalleeName: "b", Count: 1},
				{ID: hashutil.EdgeID(path, bID, "c"), CallerID: bID, CallerName: "b", CalleeName: "c", Count: 1},
			},
		},
	}
	require.NoError(t, s.WriteFile(f))

	paths, err := s.TraceCalls("a", 2)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "b", paths[0].CalleeName)
	assert.Equal(t, "c", paths[1].CalleeName)
	assert.Equal(t, 2, paths[1].Depth)
}

func TestResolveCrossFile(t *testing.T) {
	s := openTestStore(t)
	definerPath := "/repo/helper.ts"
	helperID := hashutil.SymbolID(definerPath, "helper", string(types.KindFunction), 1)
	definer := &types.File{
		AbsolutePath: definerPath, RelativePath: "helper.ts", Language: types.LangTypeScript,
		Checksum: "c1", LastModified: time.Now().UTC(),
		Snapshot: types.Snapshot{
			Symbols: []types.Symbol{
				{ID: helperID, Name: "helper", QualifiedName: "helper", Kind: types.KindFunction, Location: types.Location{File: definerPath, StartLine: 1, EndLine: 2}, Function: &types.FunctionPayload{LocalName: "helper"}},
			},
		},
	}
	require.NoError(t, s.WriteFile(definer))

	caller := sampleFile("/repo/greet.ts")
	require.NoError(t, s.WriteFile(caller))

	require.NoError(t, s.ResolveCrossFile())

	fnID := hashutil.SymbolID(caller.AbsolutePath, "greet", string(types.KindFunction), 1)
	edges, err := s.CallEdgesFrom(fnID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.NotNil(t, edges[0].CalleeID)
	assert.Equal(t, helperID, *edges[0].CalleeID)
}

func TestConfigEntriesPrefixAndSearch(t *testing.T) {
	s := openTestStore(t)
	path := "/repo/tsconfig.json"
	f := &types.File{
		AbsolutePath: path, RelativePath: "tsconfig.json", Language: types.LangConfig,
		Checksum: "c1", LastModified: time.Now().UTC(),
		Snapshot: types.Snapshot{
			ConfigEntries: []types.ConfigEntry{
				{ID: "e1", File: path, KeyPath: "compilerOptions", LeafName: "compilerOptions", ValueType: "object", RenderedValue: `{"strict":true}`, Depth: 0, Format: types.ConfigJSON},
				{ID: "e2", File: path, KeyPath: "compilerOptions.strict", LeafName: "strict", ValueType: "bool", RenderedValue: "true", Depth: 1, ParentPath: "compilerOptions", Format: types.ConfigJSON},
			},
		},
	}
	require.NoError(t, s.WriteFile(f))

	byPrefix, err := s.ConfigEntriesByPrefix("compilerOptions")
	require.NoError(t, err)
	assert.Len(t, byPrefix, 2)

	found, err := s.SearchConfigEntries("strict", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, found)
}

func TestImportsExportsAndDependencyTraversal(t *testing.T) {
	s := openTestStore(t)

	a := &types.File{
		AbsolutePath: "/repo/a.ts", RelativePath: "a.ts", Language: types.LangTypeScript,
		Checksum: "c1", LastModified: time.Now().UTC(),
		Snapshot: types.Snapshot{
			Imports: []types.Import{{ModuleSpecifier: "./b", ResolvedPath: strPtr("/repo/b.ts"), Line: 1}},
		},
	}
	b := &types.File{
		AbsolutePath: "/repo/b.ts", RelativePath: "b.ts", Language: types.LangTypeScript,
		Checksum: "c1", LastModified: time.Now().UTC(),
		Snapshot: types.Snapshot{
			Imports: []types.Import{{ModuleSpecifier: "./c", ResolvedPath: strPtr("/repo/c.ts"), Line: 1}},
			Exports: []types.Export{{Name: "B", Line: 1}},
		},
	}
	require.NoError(t, s.WriteFile(a))
	require.NoError(t, s.WriteFile(b))

	importers, err := s.ImportersOf("/repo/b.ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/a.ts"}, importers)

	transitive, err := s.TransitiveDependencies("/repo/a.ts", 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/repo/b.ts", "/repo/c.ts"}, transitive)

	exports, err := s.ExportsOf("/repo/b.ts")
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, "B", exports[0].Name)
}
