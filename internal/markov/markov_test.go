package markov_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solanumlabs/codelens/internal/hashutil"
	"github.com/solanumlabs/codelens/internal/markov"
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

// writeCallChain seeds a -> b -> c, b -> d, with counts skewed so a's
// traversal has an unambiguous highest-probability path.
func writeCallChain(t *testing.T, s *store.Store) (aID, bID, cID, dID string) {
	t.Helper()
	path := "/repo/chain.ts"
	aID = hashutil.SymbolID(path, "a", string(types.KindFunction), 1)
	bID = hashutil.SymbolID(path, "b", string(types.KindFunction), 5)
	cID = hashutil.SymbolID(path, "c", string(types.KindFunction), 10)
	dID = hashutil.SymbolID(path, "d", string(types.KindFunction), 15)

	f := &types.File{
		AbsolutePath: path, RelativePath: "chain.ts", Language: types.LangTypeScript,
		Checksum: "c1", LastModified: time.Now().UTC(),
		Snapshot: types.Snapshot{
			Symbols: []types.Symbol{
				{ID: aID, Name: "a", QualifiedName: "a", Kind: types.KindFunction, Location: types.Location{File: path, StartLine: 1, EndLine: 2}, Function: &types.FunctionPayload{LocalName: "a"}},
				{ID: bID, Name: "b", QualifiedName: "b", Kind: types.KindFunction, Location: types.Location{File: path, StartLine: 5, EndLine: 6}, Function: &types.FunctionPayload{LocalName: "b"}},
				{ID: cID, Name: "c", QualifiedName: "c", Kind: types.KindFunction, Location: types.Location{File: path, StartLine: 10, EndLine: 11}, Function: &types.FunctionPayload{LocalName: "c"}},
				{ID: dID, Name: "d", QualifiedName: "d", Kind: types.KindFunction, Location: types.Location{File: path, StartLine: 15, EndLine: 16}, Function: &types.FunctionPayload{LocalName: "d"}},
			},
		},
	}
	require.NoError(t, s.WriteFile(f))

	// Manually seed already-resolved call edges (bypassing the resolver,
	// since this test only exercises chain building/traversal).
	edges := []types.CallEdge{
		{ID: hashutil.EdgeID(path, aID, "b"), CallerID: aID, CallerName: "a", CalleeName: "b", CalleeID: &bID, Count: 9},
		{ID: hashutil.EdgeID(path, aID, "d"), CallerID: aID, CallerName: "a", CalleeName: "d", CalleeID: &dID, Count: 1},
		{ID: hashutil.EdgeID(path, bID, "c"), CallerID: bID, CallerName: "b", CalleeName: "c", CalleeID: &cID, Count: 1},
	}
	f2 := *f
	f2.Snapshot.Calls = edges
	require.NoError(t, s.WriteFile(&f2))
	return
}

func TestBuildAllAndSuggestRelated(t *testing.T) {
	s := openTestStore(t)
	writeCallChain(t, s)

	require.NoError(t, markov.BuildAll(s))

	names, err := s.ChainNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{markov.ChainCallFlow, markov.ChainCooccurrence, markov.ChainTypeAffinity}, names)

	result, err := markov.SuggestRelated(s, "a", types.SuggestOptions{Depth: 2, MinProbability: 0.01, MaxResults: 10})
	require.NoError(t, err)
	assert.Contains(t, result.ChainsUsed, markov.ChainCallFlow)
	require.NotEmpty(t, result.Suggestions)

	// b (count 9/10) should outrank d (count 1/10) as a's direct successor.
	var bScore, dScore float64
	for _, sug := range result.Suggestions {
		switch sug.SymbolName {
		case "b":
			bScore = sug.Score
		case "d":
			dScore = sug.Score
		}
	}
	assert.Greater(t, bScore, dScore)

	// c is reachable at depth 2 via b, with probability 0.9*1.0 = 0.9.
	found := false
	for _, sug := range result.Suggestions {
		if sug.SymbolName == "c" {
			found = true
			assert.Equal(t, 2, sug.Depth)
		}
	}
	assert.True(t, found)
}

func TestSuggestRelatedUnknownSymbolReturnsEmptyFallback(t *testing.T) {
	s := openTestStore(t)
	writeCallChain(t, s)
	require.NoError(t, markov.BuildAll(s))

	result, err := markov.SuggestRelated(s, "does-not-exist", types.SuggestOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
	assert.Equal(t, []string{}, result.ChainsUsed)
}

func TestSuggestRelatedMinProbabilityFilters(t *testing.T) {
	s := openTestStore(t)
	writeCallChain(t, s)
	require.NoError(t, markov.BuildAll(s))

	result, err := markov.SuggestRelated(s, "a", types.SuggestOptions{Depth: 1, MinProbability: 0.5, MaxResults: 10})
	require.NoError(t, err)
	for _, sug := range result.Suggestions {
		assert.NotEqual(t, "d", sug.SymbolName, "d's 0.1 probability should be filtered by MinProbability 0.5")
	}
}
