package types

// OutputFormat selects rendering for a retrieval endpoint.
type OutputFormat string

const (
	FormatCompact  OutputFormat = "compact"
	FormatMarkdown OutputFormat = "markdown"
)

// SearchOptions parameterizes search_symbols. Struct tags are
// validated with go-playground/validator before reaching the store.
type SearchOptions struct {
	Query    string       `json:"query" validate:"required"`
	Kind     string       `json:"kind,omitempty"`
	Language string       `json:"language,omitempty"`
	Limit    int          `json:"limit,omitempty" validate:"gte=0"`
	Offset   int          `json:"offset,omitempty" validate:"gte=0"`
	Format   OutputFormat `json:"format,omitempty" validate:"omitempty,oneof=compact markdown"`
}

// MatchSource distinguishes an FTS hit from a fuzzy-fallback hit so
// callers can surface which path produced a SearchResult.
type MatchSource string

const (
	MatchFTS   MatchSource = "fts"
	MatchFuzzy MatchSource = "fuzzy"
)

// MatchRange is a half-open [Start,End) character range within the
// matched field, the match metadata (field, character ranges)
// search_symbols is required to report.
type MatchRange struct {
	Field string `json:"field"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// SearchResult is one ranked search_symbols hit.
type SearchResult struct {
	SymbolID string       `json:"symbol_id"`
	Score    float64      `json:"score"`
	Source   MatchSource  `json:"source"`
	Matches  []MatchRange `json:"matches,omitempty"`
}

// MatchMode is one of the four type-index match modes.
type MatchMode string

const (
	MatchExact   MatchMode = "exact"
	MatchBase    MatchMode = "base"
	MatchInner   MatchMode = "inner"
	MatchPartial MatchMode = "partial"
)

// TypeQuery parameterizes a type-signature index lookup.
type TypeQuery struct {
	TargetType   string    `json:"target_type" validate:"required"`
	Mode         MatchMode `json:"mode" validate:"required,oneof=exact base inner partial"`
	AsyncVariant bool      `json:"async_variant,omitempty"`
	ByParameter  bool      `json:"by_parameter,omitempty"`
}

// SuggestOptions parameterizes suggest_related.
type SuggestOptions struct {
	Depth          int      `json:"depth,omitempty" validate:"gte=0"`
	MinProbability float64  `json:"min_probability,omitempty" validate:"gte=0,lte=1"`
	MaxResults     int      `json:"max_results,omitempty" validate:"gte=0"`
	Chains         []string `json:"chains,omitempty"`
}

// DefaultSuggestOptions applies the spec's stated defaults for any zero
// fields.
func DefaultSuggestOptions(o SuggestOptions) SuggestOptions {
	if o.Depth == 0 {
		o.Depth = 2
	}
	if o.MinProbability == 0 {
		o.MinProbability = 0.05
	}
	if o.MaxResults == 0 {
		o.MaxResults = 20
	}
	return o
}

// Suggestion is one ranked result of suggest_related.
type Suggestion struct {
	SymbolName  string   `json:"symbol_name"`
	Score       float64  `json:"score"`
	Depth       int      `json:"depth"`
	Path        []string `json:"path"`
	FilePath    string   `json:"file_path"`
	Explanation string   `json:"explanation,omitempty"`
}

// SuggestResult wraps ranked suggestions with the chains that produced
// them; an empty ChainsUsed distinguishes "no chains built" from "chains
// built but this symbol is isolated".
type SuggestResult struct {
	Suggestions []Suggestion `json:"suggestions"`
	ChainsUsed  []string     `json:"chains_used"`
}
