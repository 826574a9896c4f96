// Package markov builds and traverses the probabilistic suggestion
// chains used by suggest_related. It only ever touches the store through
// the narrow Store interface below, the same consumer-defined-interface
// seam internal/resolve uses against internal/store's crossFileAdapter.
package markov

import "github.com/solanumlabs/codelens/internal/store"

// Chain names the three relationship classes the orchestrator builds
// after every full indexing pass.
const (
	ChainCallFlow     = "call_flow"
	ChainCooccurrence = "cooccurrence"
	ChainTypeAffinity = "type_affinity"
)

var chainDescriptions = map[string]string{
	ChainCallFlow:     "caller to callee, weighted by call count",
	ChainCooccurrence: "symbols referenced within the same enclosing function or file",
	ChainTypeAffinity: "function-like symbols sharing a base return type",
}

// Store is the subset of *store.Store the chain builder and traversal
// need, kept narrow so both can be tested against a fake.
type Store interface {
	CallFlowEdges() ([]store.WeightedEdge, error)
	CooccurrenceEdges() ([]store.WeightedEdge, error)
	TypeAffinityEdges() ([]store.WeightedEdge, error)
	ReplaceChain(chain, description string, edges []store.WeightedEdge) error
	ChainNames() ([]string, error)
	TransitionsFrom(chain, state string) ([]store.Transition, error)
	SymbolIDsByName(name string) ([]string, error)
	SymbolNameByID(id string) (name, file string, err error)
}

// BuildAll rebuilds every chain from the store's current symbol/call/
// reference/type-index rows. Called once at the end of a full indexing
// pass.
//
// This always rebuilds a chain's entire transition matrix from scratch
// rather than incrementally adjusting only the touched states' rows —
// recorded as a known simplification in DESIGN.md: ReplaceChain already
// recomputes every probability in one transaction, which is simpler to
// reason about at this data volume and still keeps every state's
// outgoing probabilities summing to 1; true incremental updates would
// need per-state dirty tracking plumbed through the orchestrator's
// touched-file set.
func BuildAll(s Store) error {
	callEdges, err := s.CallFlowEdges()
	if err != nil {
		return err
	}
	if err := s.ReplaceChain(ChainCallFlow, chainDescriptions[ChainCallFlow], callEdges); err != nil {
		return err
	}

	coEdges, err := s.CooccurrenceEdges()
	if err != nil {
		return err
	}
	if err := s.ReplaceChain(ChainCooccurrence, chainDescriptions[ChainCooccurrence], coEdges); err != nil {
		return err
	}

	typeEdges, err := s.TypeAffinityEdges()
	if err != nil {
		return err
	}
	return s.ReplaceChain(ChainTypeAffinity, chainDescriptions[ChainTypeAffinity], typeEdges)
}
