package types

// ReferenceKind tags how an identifier reference is used.
type ReferenceKind string

const (
	RefCall   ReferenceKind = "call"
	RefRead   ReferenceKind = "read"
	RefWrite  ReferenceKind = "write"
	RefType   ReferenceKind = "type"
	RefImport ReferenceKind = "import"
)

// EnclosingSymbol identifies the symbol a reference/call/edge occurred
// inside, by both ID (once resolved) and name (always known at emit time).
type EnclosingSymbol struct {
	ID   *string `json:"id,omitempty"`
	Name string  `json:"name"`
}

// Reference is one identifier occurrence, tagged by kind.
type Reference struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ResolvedSymbolID *string          `json:"resolved_symbol_id,omitempty"`
	File             string           `json:"file"`
	Enclosing        *EnclosingSymbol `json:"enclosing,omitempty"`
	Line             int              `json:"line"`
	Column           int              `json:"column"`
	Snippet          string           `json:"snippet"`
	Kind             ReferenceKind    `json:"kind"`
}

// CallEdge is one (caller, callee-name) edge with an aggregated count.
type CallEdge struct {
	ID          string  `json:"id"`
	CallerID    string  `json:"caller_id"`
	CallerName  string  `json:"caller_name"`
	CalleeName  string  `json:"callee_name"`
	CalleeID    *string `json:"callee_id,omitempty"`
	Count       int     `json:"count"`
	Async       bool    `json:"async"`
	Conditional bool    `json:"conditional"`
}

// TypeRelationshipKind tags extends/implements/mixin edges.
type TypeRelationshipKind string

const (
	RelExtends    TypeRelationshipKind = "extends"
	RelImplements TypeRelationshipKind = "implements"
	RelMixin      TypeRelationshipKind = "mixin"
)

// TypeRelationship is one nominal-type edge, e.g. `class A extends B`.
type TypeRelationship struct {
	ID             string               `json:"id"`
	SourceID       string               `json:"source_id"`
	SourceName     string               `json:"source_name"`
	TargetName     string               `json:"target_name"`
	TargetBaseName string               `json:"target_base_name"` // generics stripped
	TargetID       *string              `json:"target_id,omitempty"`
	Kind           TypeRelationshipKind `json:"kind"`
}

// ConfigFormat tags the serialization of a configuration file.
type ConfigFormat string

const (
	ConfigJSON ConfigFormat = "json"
	ConfigYAML ConfigFormat = "yaml"
	ConfigTOML ConfigFormat = "toml"
)

// ConfigEntry is one flattened dotted-path leaf of a configuration document.
type ConfigEntry struct {
	ID             string       `json:"id"`
	File           string       `json:"file"`
	KeyPath        string       `json:"key_path"`
	LeafName       string       `json:"leaf_name"`
	ValueType      string       `json:"value_type"`
	RenderedValue  string       `json:"rendered_value"`
	RawValue       interface{}  `json:"raw_value"`
	Depth          int          `json:"depth"`
	ParentPath     string       `json:"parent_path,omitempty"`
	Format         ConfigFormat `json:"format"`
	RecognizedType string       `json:"recognized_type,omitempty"`
	Description    string       `json:"description,omitempty"`
	Line           int          `json:"line"`
}
