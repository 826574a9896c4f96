package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanumlabs/codelens/internal/resolve"
	"github.com/solanumlabs/codelens/pkg/types"
)

// fakeStore is an in-memory stand-in for the real store, used only to
// exercise the resolver's matching and write-back logic.
type fakeStore struct {
	calls  []*types.CallEdge
	rels   []*types.TypeRelationship
	refs   []*types.Reference
	byName  map[string][]resolve.SymbolCandidate
	classes map[string][]resolve.SymbolCandidate
}

func (s *fakeStore) UnresolvedCallEdges() []*types.CallEdge                 { return s.calls }
func (s *fakeStore) UnresolvedTypeRelationships() []*types.TypeRelationship { return s.rels }
func (s *fakeStore) UnresolvedReferences() []*types.Reference               { return s.refs }
func (s *fakeStore) SymbolsByName(name string) []resolve.SymbolCandidate    { return s.byName[name] }
func (s *fakeStore) ClassOrInterfacesByName(name string) []resolve.SymbolCandidate {
	return s.classes[name]
}

func TestResolve_UniqueCallEdge(t *testing.T) {
	store := &fakeStore{
		calls: []*types.CallEdge{{CallerID: "a", CalleeName: "helper"}},
		byName: map[string][]resolve.SymbolCandidate{
			"helper": {{ID: "sym-helper", File: "b.ts"}},
		},
	}
	resolve.Resolve(store)
	require.NotNil(t, store.calls[0].CalleeID)
	assert.Equal(t, "sym-helper", *store.calls[0].CalleeID)
}

func TestResolve_TieBreaksOnEarliestFile(t *testing.T) {
	store := &fakeStore{
		calls: []*types.CallEdge{{CallerID: "a", CalleeName: "run"}},
		byName: map[string][]resolve.SymbolCandidate{
			"run": {
				{ID: "sym-z", File: "z.ts"},
				{ID: "sym-a", File: "a.ts"},
			},
		},
	}
	resolve.Resolve(store)
	require.NotNil(t, store.calls[0].CalleeID)
	assert.Equal(t, "sym-a", *store.calls[0].CalleeID)
}

func TestResolve_NoCandidateLeavesNull(t *testing.T) {
	store := &fakeStore{
		calls: []*types.CallEdge{{CallerID: "a", CalleeName: "missing"}},
	}
	resolve.Resolve(store)
	assert.Nil(t, store.calls[0].CalleeID)
}

func TestResolve_IdempotentOnAlreadyResolved(t *testing.T) {
	already := "sym-existing"
	store := &fakeStore{
		calls: []*types.CallEdge{{CallerID: "a", CalleeName: "helper", CalleeID: &already}},
		byName: map[string][]resolve.SymbolCandidate{
			"helper": {{ID: "sym-other", File: "b.ts"}},
		},
	}
	resolve.Resolve(store)
	assert.Equal(t, "sym-existing", *store.calls[0].CalleeID)
}

func TestResolve_TypeRelationshipAndReference(t *testing.T) {
	store := &fakeStore{
		rels: []*types.TypeRelationship{{SourceID: "a", TargetName: "Base"}},
		refs: []*types.Reference{{Name: "widget"}},
		classes: map[string][]resolve.SymbolCandidate{
			"Base": {{ID: "sym-base", File: "base.ts"}},
		},
		byName: map[string][]resolve.SymbolCandidate{
			"widget": {{ID: "sym-widget", File: "widget.ts"}},
		},
	}
	resolve.Resolve(store)
	require.NotNil(t, store.rels[0].TargetID)
	assert.Equal(t, "sym-base", *store.rels[0].TargetID)
	require.NotNil(t, store.refs[0].ResolvedSymbolID)
	assert.Equal(t, "sym-widget", *store.refs[0].ResolvedSymbolID)
}
