package resolve

import (
	"sort"

	"github.com/solanumlabs/codelens/pkg/types"
)

// SymbolCandidate is one named symbol the cross-file resolver can point an
// edge at: just enough to pick a winner and report it back to the store.
type SymbolCandidate struct {
	ID   string
	File string
}

// Store is the slice of store behavior the cross-file resolver needs:
// read the not-yet-resolved edges, and look candidates up by name. The
// store package implements this against its own tables; this package
// never talks SQL.
type Store interface {
	UnresolvedCallEdges() []*types.CallEdge
	UnresolvedTypeRelationships() []*types.TypeRelationship
	UnresolvedReferences() []*types.Reference

	// SymbolsByName returns every symbol (of any kind) whose simple name
	// equals name.
	SymbolsByName(name string) []SymbolCandidate

	// ClassOrInterfacesByName returns every class/interface symbol whose
	// simple name equals name.
	ClassOrInterfacesByName(name string) []SymbolCandidate
}

// Resolve runs a single back-filling pass over unresolved rows. It is
// idempotent: a row whose ID field is already set is left untouched, and
// a row with no matching candidate is left null for the next pass.
//
// Ties are broken by picking the candidate from the lexicographically
// earliest file path; this keeps the pick deterministic and stable
// across repeated runs instead of depending on map iteration or table
// scan order.
func Resolve(store Store) {
	for _, edge := range store.UnresolvedCallEdges() {
		if edge.CalleeID != nil {
			continue
		}
		if id, ok := firstMatch(store.SymbolsByName(edge.CalleeName)); ok {
			edge.CalleeID = &id
		}
	}

	for _, rel := range store.UnresolvedTypeRelationships() {
		if rel.TargetID != nil {
			continue
		}
		if id, ok := firstMatch(store.ClassOrInterfacesByName(rel.TargetName)); ok {
			rel.TargetID = &id
		}
	}

	for _, ref := range store.UnresolvedReferences() {
		if ref.ResolvedSymbolID != nil {
			continue
		}
		if id, ok := firstMatch(store.SymbolsByName(ref.Name)); ok {
			ref.ResolvedSymbolID = &id
		}
	}
}

// firstMatch implements the "first match" tie-break policy: zero
// candidates leaves the field null, one candidate resolves it, and two or
// more resolves to the candidate whose File sorts earliest
// lexicographically rather than leaving the edge ambiguous. This is a
// documented approximation — a call site could legitimately target
// either candidate — but it is deterministic and stable across
// re-indexing.
func firstMatch(candidates []SymbolCandidate) (string, bool) {
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0].ID, true
	default:
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].File != candidates[j].File {
				return candidates[i].File < candidates[j].File
			}
			return candidates[i].ID < candidates[j].ID
		})
		return candidates[0].ID, true
	}
}
