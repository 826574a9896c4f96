package fuzzy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solanumlabs/codelens/internal/store/fuzzy"
)

func TestScoreIdentical(t *testing.T) {
	distance, similarity := fuzzy.Score("getUser", "getUser")
	assert.Zero(t, distance)
	assert.Equal(t, 1.0, similarity)
}

func TestScoreCaseInsensitive(t *testing.T) {
	distance, _ := fuzzy.Score("GetUser", "getuser")
	assert.Zero(t, distance)
}

func TestMatchesThreshold(t *testing.T) {
	_, ok := fuzzy.Matches("getUsr", "getUser", fuzzy.DefaultThreshold)
	assert.True(t, ok)

	_, ok = fuzzy.Matches("completelyDifferent", "getUser", fuzzy.DefaultThreshold)
	assert.False(t, ok)
}

func TestSearchPicksBestFieldPerCandidate(t *testing.T) {
	candidates := []fuzzy.Candidate{
		{SymbolID: "s1", Name: "getUsr", QualifiedName: "Service.getUsr", Signature: "getUsr(id)"},
		{SymbolID: "s2", Name: "totallyOff", QualifiedName: "X.totallyOff", Signature: "totallyOff()"},
	}
	matches := fuzzy.Search("getUser", candidates, fuzzy.DefaultThreshold)
	require := assert.New(t)
	require.Len(matches, 1)
	require.Equal("s1", matches[0].SymbolID)
}
