package types

import "time"

// Language is the parser-owning language tag for an indexed file.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangConfig     Language = "config"
)

// ParseStatus records how much of a file was successfully parsed.
type ParseStatus string

const (
	ParseComplete ParseStatus = "complete"
	ParsePartial  ParseStatus = "partial"
	ParseSkipped  ParseStatus = "skipped"
)

// ParseWarningReason classifies why a file was partially or wholly skipped.
type ParseWarningReason string

const (
	ReasonFileTooLarge ParseWarningReason = "FILE_TOO_LARGE"
	ReasonParseError   ParseWarningReason = "PARSE_ERROR"
	ReasonTimeout      ParseWarningReason = "TIMEOUT"
)

// ParseWarning is one diagnostic attached to a file record.
type ParseWarning struct {
	Reason  ParseWarningReason `json:"reason"`
	Message string             `json:"message"`
}

// Snapshot is the serialized per-file sub-record set: the single source
// of truth for a file's content. Normalized store tables are
// projections of this snapshot and must be deleted/re-derived atomically
// with it.
type Snapshot struct {
	Symbols           []Symbol           `json:"symbols"`
	Imports           []Import           `json:"imports"`
	Exports           []Export           `json:"exports"`
	References        []Reference        `json:"references"`
	Calls             []CallEdge         `json:"calls"`
	TypeRelationships []TypeRelationship `json:"type_relationships"`
	ConfigEntries     []ConfigEntry      `json:"config_entries,omitempty"`
}

// File is the per-path record keyed by absolute path.
type File struct {
	AbsolutePath string         `json:"absolute_path"`
	RelativePath string         `json:"relative_path"`
	Language     Language       `json:"language"`
	Checksum     string         `json:"checksum"` // SHA-256 hex of content
	LastModified time.Time      `json:"last_modified"`
	Summary      string         `json:"summary"`
	LineCount    int            `json:"line_count"`
	ParseStatus  ParseStatus    `json:"parse_status"`
	Warnings     []ParseWarning `json:"warnings,omitempty"`
	ByteSize     *int64         `json:"byte_size,omitempty"`
	Snapshot     Snapshot       `json:"snapshot"`
}

// ImportSpecifier is one named import within an Import record.
type ImportSpecifier struct {
	Name      string  `json:"name"`
	Alias     *string `json:"alias,omitempty"`
	Default   bool    `json:"default"`
	Namespace bool    `json:"namespace"`
}

// Import represents a single import statement, pre- and post-resolution.
type Import struct {
	ModuleSpecifier string            `json:"module_specifier"`
	Specifiers      []ImportSpecifier `json:"specifiers"`
	TypeOnly        bool              `json:"type_only"`
	Line            int               `json:"line"`

	// Populated by the import resolver.
	ResolvedPath *string `json:"resolved_path,omitempty"`
	External     bool    `json:"external"`
	ReExport     bool    `json:"re_export"`
}

// Export represents one exported name from a file.
type Export struct {
	Name               string  `json:"name"`
	Default            bool    `json:"default"`
	ReExport           bool    `json:"re_export"`
	SourceModule       *string `json:"source_module,omitempty"`
	ResolvedReExportTo *string `json:"resolved_re_export_to,omitempty"`
	Line               int     `json:"line"`
}
