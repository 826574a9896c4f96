package fuzzycache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanumlabs/codelens/internal/store/fuzzy"
	"github.com/solanumlabs/codelens/internal/store/fuzzycache"
)

func newTestCache(t *testing.T) *fuzzycache.Cache {
	t.Helper()
	c, err := fuzzycache.New()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })
	return c
}

func TestRebuildAndGet(t *testing.T) {
	c := newTestCache(t)
	candidates := []fuzzy.Candidate{
		{SymbolID: "s1", Name: "getUser", QualifiedName: "Service.getUser", Signature: "getUser(id)"},
		{SymbolID: "s2", Name: "deleteUser", QualifiedName: "Service.deleteUser", Signature: "deleteUser(id)"},
	}
	require.NoError(t, c.Rebuild(candidates))

	got, ok := c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "getUser", got.Name)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestRebuildReplacesPriorSnapshot(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Rebuild([]fuzzy.Candidate{{SymbolID: "s1", Name: "old"}}))
	require.NoError(t, c.Rebuild([]fuzzy.Candidate{{SymbolID: "s2", Name: "new"}}))

	_, ok := c.Get("s1")
	assert.False(t, ok)
	got, ok := c.Get("s2")
	require.True(t, ok)
	assert.Equal(t, "new", got.Name)
}

func TestAllReturnsEverything(t *testing.T) {
	c := newTestCache(t)
	candidates := []fuzzy.Candidate{
		{SymbolID: "s1", Name: "a"},
		{SymbolID: "s2", Name: "b"},
		{SymbolID: "s3", Name: "c"},
	}
	require.NoError(t, c.Rebuild(candidates))

	all, err := c.All()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
