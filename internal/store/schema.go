package store

// schema is the embedded relational layout backing the symbol store:
// files/symbols/imports/relationships/references plus an FTS5 mirror
// with sync triggers, generalized to the sum-typed, language-neutral
// model in pkg/types. Symbol variant payloads are flattened into
// nullable columns instead of a single `metadata` JSON blob, and calls
// and type relationships live in separate `call_graph` and
// `type_relationships` tables because the two carry different
// resolved-ID semantics and different Markov chains consume them
// separately.
const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS files (
    absolute_path   TEXT PRIMARY KEY,
    relative_path   TEXT NOT NULL,
    language        TEXT NOT NULL,
    checksum        TEXT NOT NULL,
    last_modified   DATETIME,
    summary         TEXT,
    line_count      INTEGER,
    parse_status    TEXT,
    byte_size       INTEGER,
    warnings_json   TEXT,
    snapshot_json   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_relative ON files(relative_path);
CREATE INDEX IF NOT EXISTS idx_files_checksum ON files(checksum);

CREATE TABLE IF NOT EXISTS symbols (
    id              TEXT PRIMARY KEY,
    file            TEXT NOT NULL REFERENCES files(absolute_path) ON DELETE CASCADE,
    name            TEXT NOT NULL,
    qualified_name  TEXT NOT NULL,
    local_name      TEXT,
    kind            TEXT NOT NULL,
    signature       TEXT,
    start_line      INTEGER,
    end_line        INTEGER,
    start_column    INTEGER,
    end_column      INTEGER,
    parent_function TEXT,
    parent_class    TEXT,
    nesting_depth   INTEGER DEFAULT 0,
    async           BOOLEAN DEFAULT 0,
    exported        BOOLEAN DEFAULT 0,
    static          BOOLEAN DEFAULT 0,
    private         BOOLEAN DEFAULT 0,
    protected       BOOLEAN DEFAULT 0,
    abstract        BOOLEAN DEFAULT 0,
    payload_json    TEXT
);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_qualified ON symbols(qualified_name);
CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind);

CREATE VIRTUAL TABLE IF NOT EXISTS symbols_fts USING fts5(
    name, qualified_name, signature,
    content='symbols', content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS symbols_ai AFTER INSERT ON symbols BEGIN
    INSERT INTO symbols_fts(rowid, name, qualified_name, signature)
    VALUES (new.rowid, new.name, new.qualified_name, new.signature);
END;
CREATE TRIGGER IF NOT EXISTS symbols_ad AFTER DELETE ON symbols BEGIN
    INSERT INTO symbols_fts(symbols_fts, rowid, name, qualified_name, signature)
    VALUES ('delete', old.rowid, old.name, old.qualified_name, old.signature);
END;
CREATE TRIGGER IF NOT EXISTS symbols_au AFTER UPDATE ON symbols BEGIN
    INSERT INTO symbols_fts(symbols_fts, rowid, name, qualified_name, signature)
    VALUES ('delete', old.rowid, old.name, old.qualified_name, old.signature);
    INSERT INTO symbols_fts(rowid, name, qualified_name, signature)
    VALUES (new.rowid, new.name, new.qualified_name, new.signature);
END;

CREATE TABLE IF NOT EXISTS symbol_references (
    id               TEXT PRIMARY KEY,
    file             TEXT NOT NULL REFERENCES files(absolute_path) ON DELETE CASCADE,
    name             TEXT NOT NULL,
    resolved_symbol_id TEXT,
    enclosing_id     TEXT,
    enclosing_name   TEXT,
    line             INTEGER,
    column           INTEGER,
    snippet          TEXT,
    kind             TEXT
);
CREATE INDEX IF NOT EXISTS idx_references_file ON symbol_references(file);
CREATE INDEX IF NOT EXISTS idx_references_name ON symbol_references(name);
CREATE INDEX IF NOT EXISTS idx_references_resolved ON symbol_references(resolved_symbol_id);

CREATE TABLE IF NOT EXISTS call_graph (
    id           TEXT PRIMARY KEY,
    file         TEXT NOT NULL REFERENCES files(absolute_path) ON DELETE CASCADE,
    caller_id    TEXT NOT NULL,
    caller_name  TEXT NOT NULL,
    callee_name  TEXT NOT NULL,
    callee_id    TEXT,
    count        INTEGER DEFAULT 1,
    async        BOOLEAN DEFAULT 0,
    conditional  BOOLEAN DEFAULT 0,
    UNIQUE(caller_id, callee_name)
);
CREATE INDEX IF NOT EXISTS idx_callgraph_caller ON call_graph(caller_id);
CREATE INDEX IF NOT EXISTS idx_callgraph_callee ON call_graph(callee_id);
CREATE INDEX IF NOT EXISTS idx_callgraph_calleename ON call_graph(callee_name);

CREATE TABLE IF NOT EXISTS type_relationships (
    id               TEXT PRIMARY KEY,
    file             TEXT NOT NULL REFERENCES files(absolute_path) ON DELETE CASCADE,
    source_id        TEXT NOT NULL,
    source_name      TEXT NOT NULL,
    target_name      TEXT NOT NULL,
    target_base_name TEXT NOT NULL,
    target_id        TEXT,
    kind             TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_typerel_source ON type_relationships(source_id);
CREATE INDEX IF NOT EXISTS idx_typerel_target ON type_relationships(target_id);
CREATE INDEX IF NOT EXISTS idx_typerel_targetname ON type_relationships(target_name);

CREATE TABLE IF NOT EXISTS symbol_types (
    symbol_id         TEXT PRIMARY KEY REFERENCES symbols(id) ON DELETE CASCADE,
    raw_text          TEXT,
    normalized_text   TEXT,
    base_name         TEXT,
    inner_args        TEXT,
    async             BOOLEAN DEFAULT 0,
    nullable          BOOLEAN DEFAULT 0,
    array             BOOLEAN DEFAULT 0,
    generic           BOOLEAN DEFAULT 0,
    parameter_count   INTEGER DEFAULT 0,
    is_method         BOOLEAN DEFAULT 0,
    parent_class      TEXT
);
CREATE INDEX IF NOT EXISTS idx_symboltypes_base ON symbol_types(base_name);
CREATE INDEX IF NOT EXISTS idx_symboltypes_normalized ON symbol_types(normalized_text);

CREATE TABLE IF NOT EXISTS symbol_type_params (
    symbol_id       TEXT NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
    position        INTEGER NOT NULL,
    name            TEXT,
    raw_text        TEXT,
    normalized_text TEXT,
    base_name       TEXT,
    inner_args      TEXT,
    optional        BOOLEAN DEFAULT 0,
    nullable        BOOLEAN DEFAULT 0,
    array           BOOLEAN DEFAULT 0,
    generic         BOOLEAN DEFAULT 0,
    has_default     BOOLEAN DEFAULT 0,
    PRIMARY KEY (symbol_id, position)
);
CREATE INDEX IF NOT EXISTS idx_typeparams_base ON symbol_type_params(base_name);

CREATE TABLE IF NOT EXISTS config_entries (
    id              TEXT PRIMARY KEY,
    file            TEXT NOT NULL REFERENCES files(absolute_path) ON DELETE CASCADE,
    key_path        TEXT NOT NULL,
    leaf_name       TEXT,
    value_type      TEXT,
    rendered_value  TEXT,
    depth           INTEGER,
    parent_path     TEXT,
    format          TEXT,
    recognized_type TEXT,
    description     TEXT,
    line            INTEGER
);
CREATE INDEX IF NOT EXISTS idx_config_file ON config_entries(file);
CREATE INDEX IF NOT EXISTS idx_config_keypath ON config_entries(key_path);

CREATE VIRTUAL TABLE IF NOT EXISTS config_entries_fts USING fts5(
    key_path, rendered_value,
    content='config_entries', content_rowid='rowid'
);
CREATE TRIGGER IF NOT EXISTS config_ai AFTER INSERT ON config_entries BEGIN
    INSERT INTO config_entries_fts(rowid, key_path, rendered_value)
    VALUES (new.rowid, new.key_path, new.rendered_value);
END;
CREATE TRIGGER IF NOT EXISTS config_ad AFTER DELETE ON config_entries BEGIN
    INSERT INTO config_entries_fts(config_entries_fts, rowid, key_path, rendered_value)
    VALUES ('delete', old.rowid, old.key_path, old.rendered_value);
END;

CREATE TABLE IF NOT EXISTS file_imports (
    file             TEXT NOT NULL REFERENCES files(absolute_path) ON DELETE CASCADE,
    module_specifier TEXT NOT NULL,
    specifiers_json  TEXT,
    type_only        BOOLEAN DEFAULT 0,
    line             INTEGER,
    resolved_path    TEXT,
    external         BOOLEAN DEFAULT 0,
    re_export        BOOLEAN DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_imports_file ON file_imports(file);
CREATE INDEX IF NOT EXISTS idx_imports_resolved ON file_imports(resolved_path);
CREATE INDEX IF NOT EXISTS idx_imports_specifier ON file_imports(module_specifier);

CREATE TABLE IF NOT EXISTS file_exports (
    file                  TEXT NOT NULL REFERENCES files(absolute_path) ON DELETE CASCADE,
    name                  TEXT NOT NULL,
    is_default            BOOLEAN DEFAULT 0,
    re_export             BOOLEAN DEFAULT 0,
    source_module         TEXT,
    resolved_re_export_to TEXT,
    line                  INTEGER
);
CREATE INDEX IF NOT EXISTS idx_exports_file ON file_exports(file);
CREATE INDEX IF NOT EXISTS idx_exports_name ON file_exports(name);

CREATE TABLE IF NOT EXISTS markov_chains (
    name        TEXT PRIMARY KEY,
    description TEXT,
    updated_at  DATETIME
);

CREATE TABLE IF NOT EXISTS markov_transitions (
    chain          TEXT NOT NULL REFERENCES markov_chains(name) ON DELETE CASCADE,
    from_state_id  TEXT NOT NULL,
    to_state_id    TEXT NOT NULL,
    raw_count      INTEGER NOT NULL DEFAULT 0,
    probability    REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (chain, from_state_id, to_state_id)
);
CREATE INDEX IF NOT EXISTS idx_markov_from ON markov_transitions(chain, from_state_id);

CREATE TABLE IF NOT EXISTS markov_state_sums (
    chain    TEXT NOT NULL REFERENCES markov_chains(name) ON DELETE CASCADE,
    state_id TEXT NOT NULL,
    sum      INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (chain, state_id)
);

CREATE TABLE IF NOT EXISTS markov_file_deps (
    chain TEXT NOT NULL REFERENCES markov_chains(name) ON DELETE CASCADE,
    file  TEXT NOT NULL REFERENCES files(absolute_path) ON DELETE CASCADE,
    PRIMARY KEY (chain, file)
);
`
