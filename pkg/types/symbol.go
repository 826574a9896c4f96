package types

// SymbolKind tags the variant of a Symbol. The symbol set is a sum type:
// one storage shape carries every common field plus a kind tag and a
// variant-specific payload, so downstream consumers (store, resolver,
// Markov builder) cannot disagree about field presence.
type SymbolKind string

const (
	KindFunction    SymbolKind = "function"
	KindMethod      SymbolKind = "method"
	KindConstructor SymbolKind = "constructor"
	KindCallback    SymbolKind = "callback"
	KindClass       SymbolKind = "class"
	KindInterface   SymbolKind = "interface"
	KindTypeAlias   SymbolKind = "type_alias"
	KindVariable    SymbolKind = "variable"
)

// Visibility covers what the TS/JS and Python parsers actually
// distinguish.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// Location pinpoints a symbol within its file.
type Location struct {
	File        string `json:"file"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	StartColumn int    `json:"start_column,omitempty"`
	EndColumn   int    `json:"end_column,omitempty"`
}

// Parameter is one entry of a function/method's ordered parameter list.
type Parameter struct {
	Name     string  `json:"name"`
	Type     *string `json:"type,omitempty"`
	Default  *string `json:"default,omitempty"`
	Optional bool    `json:"optional"`
	Rest     bool    `json:"rest"`
	Doc      string  `json:"doc,omitempty"`
}

// Modifiers is the modifier set carried by function/method/constructor/
// callback variants.
type Modifiers struct {
	Async           bool    `json:"async"`
	Exported        bool    `json:"exported"`
	Static          bool    `json:"static"`
	Private         bool    `json:"private"`
	Protected       bool    `json:"protected"`
	Abstract        bool    `json:"abstract"`
	Generator       bool    `json:"generator"`
	CallbackContext *string `json:"callback_context,omitempty"`
}

// FunctionPayload holds the fields specific to the function/method/
// constructor/callback variants.
type FunctionPayload struct {
	Parameters     []Parameter `json:"parameters"`
	ReturnType     *string     `json:"return_type,omitempty"`
	Modifiers      Modifiers   `json:"modifiers"`
	ParentClass    *string     `json:"parent_class,omitempty"`
	ParentFunction *string     `json:"parent_function,omitempty"`
	NestingDepth   int         `json:"nesting_depth"`
	LocalName      string      `json:"local_name"`
	Decorators     []string    `json:"decorators,omitempty"`
	TypeParameters []string    `json:"type_parameters,omitempty"`
}

// Property is one class/interface property.
type Property struct {
	Name       string     `json:"name"`
	Type       *string    `json:"type,omitempty"`
	Optional   bool       `json:"optional"`
	Readonly   bool       `json:"readonly"`
	Static     bool       `json:"static"`
	Visibility Visibility `json:"visibility,omitempty"`
	Default    *string    `json:"default,omitempty"`
	Doc        string     `json:"doc,omitempty"`
}

// ClassPayload holds fields specific to the class variant.
type ClassPayload struct {
	Extends              *string    `json:"extends,omitempty"`
	Implements           []string   `json:"implements,omitempty"`
	Methods              []string   `json:"methods,omitempty"` // qualified names, ordered
	Properties           []Property `json:"properties,omitempty"`
	ConstructorSignature *string    `json:"constructor_signature,omitempty"`
	Decorators           []string   `json:"decorators,omitempty"`
	TypeParameters       []string   `json:"type_parameters,omitempty"`
	Abstract             bool       `json:"abstract"`
}

// InterfacePayload holds fields specific to the interface variant.
type InterfacePayload struct {
	Extends        []string   `json:"extends,omitempty"`
	Properties     []Property `json:"properties,omitempty"`
	Methods        []string   `json:"methods,omitempty"`
	TypeParameters []string   `json:"type_parameters,omitempty"`
}

// TypeAliasPayload holds fields specific to the type-alias variant.
type TypeAliasPayload struct {
	TypeText       string   `json:"type_text"`
	TypeParameters []string `json:"type_parameters,omitempty"`
}

// VariableKind distinguishes const/let/var declarations.
type VariableKind string

const (
	VarKindConst VariableKind = "const"
	VarKindLet   VariableKind = "let"
	VarKindVar   VariableKind = "var"
)

// VariablePayload holds fields specific to the variable variant.
type VariablePayload struct {
	DeclKind VariableKind `json:"decl_kind"`
	Type     *string      `json:"type,omitempty"`
	Exported bool         `json:"exported"`
}

// Symbol is the sum-typed entity every parser produces and the store
// persists. Common fields sit at the top level; exactly one of the
// payload fields is non-nil, selected by Kind.
type Symbol struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualified_name"`
	Kind          SymbolKind `json:"kind"`
	Signature     string     `json:"signature"`
	Location      Location   `json:"location"`

	Function  *FunctionPayload  `json:"function,omitempty"`
	Class     *ClassPayload     `json:"class,omitempty"`
	Interface *InterfacePayload `json:"interface,omitempty"`
	TypeAlias *TypeAliasPayload `json:"type_alias,omitempty"`
	Variable  *VariablePayload  `json:"variable,omitempty"`
}

// IsFunctionLike reports whether Kind carries a FunctionPayload.
func (s *Symbol) IsFunctionLike() bool {
	switch s.Kind {
	case KindFunction, KindMethod, KindConstructor, KindCallback:
		return true
	default:
		return false
	}
}

// NestingDepth returns the symbol's nesting depth, 0 for non-function
// variants.
func (s *Symbol) NestingDepth() int {
	if s.Function != nil {
		return s.Function.NestingDepth
	}
	return 0
}

// IsExported reports the symbol's export/public status across variants.
func (s *Symbol) IsExported() bool {
	switch {
	case s.Function != nil:
		return s.Function.Modifiers.Exported
	case s.Variable != nil:
		return s.Variable.Exported
	case s.Class != nil, s.Interface != nil, s.TypeAlias != nil:
		return true // presence in File.Exports is the authority for these; default true
	default:
		return false
	}
}
