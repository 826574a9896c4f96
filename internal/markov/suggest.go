package markov

import (
	"sort"

	"github.com/solanumlabs/codelens/pkg/types"
)

// defaultChains is used when opts.Chains is empty: every chain the
// builder knows how to produce.
var defaultChains = []string{ChainCallFlow, ChainCooccurrence, ChainTypeAffinity}

// pathEntry is one step of an in-progress BFS walk: the state reached,
// the cumulative probability to reach it (product of edge probabilities
// along the path), and the symbol-ID path itself.
type pathEntry struct {
	state       string
	probability float64
	path        []string
	depth       int
}

// SuggestRelated implements suggest_related: traverse every selected
// chain breadth-first from symbolName's start state(s) up to
// opts.Depth, combine probabilities along a path by multiplication,
// combine across chains by taking the max score per target, filter by
// opts.MinProbability, sort descending, and cap at opts.MaxResults.
func SuggestRelated(s Store, symbolName string, opts types.SuggestOptions) (types.SuggestResult, error) {
	opts = types.DefaultSuggestOptions(opts)
	chains := opts.Chains
	if len(chains) == 0 {
		chains = defaultChains
	}

	startStates, err := s.SymbolIDsByName(symbolName)
	if err != nil {
		return types.SuggestResult{}, err
	}
	if len(startStates) == 0 {
		return types.SuggestResult{ChainsUsed: []string{}}, nil
	}

	best := map[string]Suggestion{}
	var chainsUsed []string
	for _, chain := range chains {
		hits, used, err := traverseChain(s, chain, startStates, opts.Depth)
		if err != nil {
			return types.SuggestResult{}, err
		}
		if used {
			chainsUsed = append(chainsUsed, chain)
		}
		for stateID, entry := range hits {
			if prev, ok := best[stateID]; !ok || entry.probability > prev.score {
				best[stateID] = Suggestion{score: entry.probability, depth: entry.depth, path: entry.path}
			}
		}
	}

	if len(chainsUsed) == 0 {
		return types.SuggestResult{ChainsUsed: []string{}}, nil
	}

	var out []types.Suggestion
	for stateID, sug := range best {
		if sug.score < opts.MinProbability {
			continue
		}
		name, file, err := s.SymbolNameByID(stateID)
		if err != nil {
			continue
		}
		out = append(out, types.Suggestion{
			SymbolName: name,
			Score:      sug.score,
			Depth:      sug.depth,
			Path:       sug.path,
			FilePath:   file,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if opts.MaxResults > 0 && len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}
	return types.SuggestResult{Suggestions: out, ChainsUsed: chainsUsed}, nil
}

// Suggestion is the chain-internal accumulator for one target state,
// carrying the path of symbol IDs used to render types.Suggestion.Path.
type Suggestion struct {
	score float64
	depth int
	path  []string
}

// traverseChain runs one BFS per start state within chain, merging
// results across start states by taking the max probability per target.
// used reports whether chain produced any transition at all for any
// start state, distinguishing "chain missing transitions" from "chain
// built but this symbol is isolated".
func traverseChain(s Store, chain string, startStates []string, depth int) (map[string]pathEntry, bool, error) {
	best := map[string]pathEntry{}
	used := false

	for _, start := range startStates {
		frontier := []pathEntry{{state: start, probability: 1, path: nil, depth: 0}}
		visited := map[string]bool{start: true}

		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			if cur.depth >= depth {
				continue
			}
			transitions, err := s.TransitionsFrom(chain, cur.state)
			if err != nil {
				return nil, false, err
			}
			if len(transitions) > 0 {
				used = true
			}
			for _, t := range transitions {
				nextProb := cur.probability * t.Probability
				nextPath := append(append([]string{}, cur.path...), t.To)
				entry := pathEntry{state: t.To, probability: nextProb, path: nextPath, depth: cur.depth + 1}
				if prev, ok := best[t.To]; !ok || nextProb > prev.probability {
					best[t.To] = entry
				}
				if !visited[t.To] {
					visited[t.To] = true
					frontier = append(frontier, entry)
				}
			}
		}
	}

	for _, start := range startStates {
		delete(best, start)
	}
	return best, used, nil
}
